// Package httpapi provides the rampup HTTP API server.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"rampup/docs"
	"rampup/draft"
	"rampup/model"
	"rampup/notify"
	"rampup/planner"
	"rampup/store"
)

// DocImporter fetches documentation from an external repository into
// document sources.
type DocImporter interface {
	ImportDocs(ctx context.Context, projectID int64, repo, uploadedBy string) ([]*model.Document, error)
}

// Server wires the store, the plan generator and the draft manager behind a
// chi router.
type Server struct {
	store    store.Store
	planner  *planner.Generator
	drafts   *draft.Manager
	notifier notify.Notifier
	importer DocImporter // nil disables the import endpoint
	router   chi.Router
}

// New creates a Server with all dependencies. A nil notifier falls back to a
// no-op.
func New(st store.Store, gen *planner.Generator, drafts *draft.Manager, notifier notify.Notifier) *Server {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	s := &Server{
		store:    st,
		planner:  gen,
		drafts:   drafts,
		notifier: notifier,
	}
	s.router = s.buildRouter()
	return s
}

// SetImporter enables the external documentation import endpoint.
func (s *Server) SetImporter(im DocImporter) { s.importer = im }

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))

	r.Route("/api", func(r chi.Router) {
		r.Route("/projects", func(r chi.Router) {
			r.Post("/", s.handleCreateProject)
			r.Get("/", s.handleListProjects)
			r.Get("/{id}", s.handleGetProject)

			r.Post("/{id}/roles", s.handleCreateRole)
			r.Get("/{id}/roles", s.handleListRoles)
			r.Post("/{id}/members", s.handleAddMembership)
			r.Get("/{id}/members", s.handleListMemberships)

			r.Post("/{id}/tasks", s.handleCreateProjectTask)
			r.Get("/{id}/tasks", s.handleListProjectTasks)

			r.Post("/{id}/documents", s.handleCreateDocument)
			r.Get("/{id}/documents", s.handleListDocuments)
			r.Post("/{id}/documents/import", s.handleImportDocuments)

			r.Post("/{id}/onboarding/generate", s.handleGeneratePlan)
			r.Get("/{id}/onboarding/draft", s.handleGetDraft)
			r.Post("/{id}/onboarding/approve", s.handleApprovePlan)
			r.Post("/{id}/onboarding/reject", s.handleRejectPlan)
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Post("/", s.handleCreateContact)
			r.Get("/", s.handleListContacts)
			r.Get("/{id}", s.handleGetContact)
			r.Put("/{id}", s.handleUpdateContact)
			r.Delete("/{id}", s.handleDeleteContact)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/{id}", s.handleGetProjectTask)
			r.Put("/{id}", s.handleUpdateProjectTask)
			r.Delete("/{id}", s.handleDeleteProjectTask)
		})
		r.Get("/my/tasks", s.handleMyTasks)

		r.Route("/memberships", func(r chi.Router) {
			r.Get("/{id}/onboarding", s.handleOnboardingProgress)
			r.Put("/{id}/onboarding/tasks/{templateID}", s.handleSetOnboardingTaskStatus)
		})

		r.Get("/roles/{id}/steps", s.handleListSteps)
		r.Get("/steps/{id}/tasks", s.handleListTaskTemplates)
		r.Get("/steps/{id}/versions", s.handleListVersions)
	})

	// Health check.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	return r
}

// --- Request/Response types ---

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type createRoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type addMembershipRequest struct {
	UserID  string `json:"user_id"`
	RoleID  *int64 `json:"role_id"`
	IsAdmin bool   `json:"is_admin"`
}

type createDocumentRequest struct {
	Title   string `json:"title"`
	DocType string `json:"doc_type"`
	Content string `json:"content"`
}

type projectTaskRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	AssignedTo    string `json:"assigned_to"`
	Status        string `json:"status"`
	Date          string `json:"date"`
	DurationHours int    `json:"duration_hours"`
}

type taskStatusRequest struct {
	Status string `json:"status"`
}

// taskProgress pairs an approved template with the member's instance, which
// is nil until the member first touches the task.
type taskProgress struct {
	Template *model.TaskTemplateRecord `json:"template"`
	Task     *model.OnboardingTask     `json:"task,omitempty"`
}

type stepProgress struct {
	Step  *model.StepRecord `json:"step"`
	Tasks []taskProgress    `json:"tasks"`
}

type onboardingProgressResponse struct {
	MembershipID   int64          `json:"membership_id"`
	RoleID         int64          `json:"role_id"`
	Steps          []stepProgress `json:"steps"`
	TotalTasks     int            `json:"total_tasks"`
	CompletedTasks int            `json:"completed_tasks"`
}

type generatePlanRequest struct {
	RoleID      int64   `json:"role_id"`
	Stack       string  `json:"stack"`
	DocumentIDs []int64 `json:"document_ids"`
}

type approveResponse struct {
	StepsCreated int      `json:"steps_created"`
	TasksCreated int      `json:"tasks_created"`
	SkippedTasks []string `json:"skipped_tasks,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// --- Project handlers ---

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	p := &model.Project{
		Name:        req.Name,
		Description: req.Description,
		Creator:     userID(r),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateProject(p); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create project")
		log.Printf("Error creating project: %v", err)
		return
	}

	// The creator administers their own project.
	if p.Creator != "" {
		m := &model.Membership{
			ProjectID: p.ID,
			UserID:    p.Creator,
			IsAdmin:   true,
			AddedAt:   time.Now().UTC(),
		}
		if err := s.store.AddMembership(m); err != nil {
			log.Printf("Error adding creator membership: %v", err)
		}
	}

	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.ListProjects()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list projects")
		log.Printf("Error listing projects: %v", err)
		return
	}
	if projects == nil {
		projects = []*model.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := s.store.GetProject(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req createRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	role := &model.Role{
		ProjectID:   projectID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.store.CreateRole(role); err != nil {
		writeError(w, http.StatusConflict, "failed to create role (duplicate name?)")
		log.Printf("Error creating role: %v", err)
		return
	}
	writeJSON(w, http.StatusCreated, role)
}

func (s *Server) handleListRoles(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	roles, err := s.store.ListRoles(projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list roles")
		log.Printf("Error listing roles: %v", err)
		return
	}
	if roles == nil {
		roles = []*model.Role{}
	}
	writeJSON(w, http.StatusOK, roles)
}

func (s *Server) handleAddMembership(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if !s.requireAdmin(w, r, projectID) {
		return
	}
	var req addMembershipRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	m := &model.Membership{
		ProjectID: projectID,
		UserID:    req.UserID,
		RoleID:    req.RoleID,
		IsAdmin:   req.IsAdmin,
		AddedAt:   time.Now().UTC(),
	}
	if err := s.store.AddMembership(m); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to add member")
		log.Printf("Error adding membership: %v", err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleListMemberships(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	members, err := s.store.ListMemberships(projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list members")
		log.Printf("Error listing memberships: %v", err)
		return
	}
	if members == nil {
		members = []*model.Membership{}
	}
	writeJSON(w, http.StatusOK, members)
}

// --- Project task handlers ---

func (s *Server) handleCreateProjectTask(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	if _, err := s.store.GetProject(projectID); err != nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	var req projectTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Status != "" && !model.ValidTaskStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}
	if req.AssignedTo == "" {
		req.AssignedTo = uid
	}

	t := &model.ProjectTask{
		ProjectID:     projectID,
		Title:         req.Title,
		Description:   req.Description,
		AssignedTo:    req.AssignedTo,
		Status:        req.Status,
		Date:          req.Date,
		DurationHours: req.DurationHours,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.CreateProjectTask(t); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create task")
		log.Printf("Error creating project task: %v", err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleListProjectTasks(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	tasks, err := s.store.ListProjectTasks(projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		log.Printf("Error listing project tasks: %v", err)
		return
	}
	if tasks == nil {
		tasks = []*model.ProjectTask{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleGetProjectTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	t, err := s.store.GetProjectTask(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateProjectTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	existing, err := s.store.GetProjectTask(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	var req projectTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Status != "" && !model.ValidTaskStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}
	if req.Status == "" {
		req.Status = existing.Status
	}
	if req.DurationHours <= 0 {
		req.DurationHours = existing.DurationHours
	}

	t := &model.ProjectTask{
		ID:            id,
		ProjectID:     existing.ProjectID,
		Title:         req.Title,
		Description:   req.Description,
		AssignedTo:    req.AssignedTo,
		Status:        req.Status,
		Date:          req.Date,
		DurationHours: req.DurationHours,
		CreatedAt:     existing.CreatedAt,
	}
	if err := s.store.UpdateProjectTask(t); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update task")
		log.Printf("Error updating project task: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteProjectTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteProjectTask(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete task")
		log.Printf("Error deleting project task: %v", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMyTasks is the caller's task dashboard: everything assigned to them
// across all projects.
func (s *Server) handleMyTasks(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	tasks, err := s.store.ListAssignedTasks(uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		log.Printf("Error listing assigned tasks: %v", err)
		return
	}
	if tasks == nil {
		tasks = []*model.ProjectTask{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// --- Document handlers ---

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req createDocumentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, "title and content are required")
		return
	}
	docType := req.DocType
	if docType == "" {
		docType = "txt"
	}

	d := &model.Document{
		ProjectID:  projectID,
		Title:      req.Title,
		DocType:    docType,
		Content:    req.Content,
		Status:     model.DocStatusUploaded,
		UploadedBy: userID(r),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.CreateDocument(d); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store document")
		log.Printf("Error creating document: %v", err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

type importDocumentsRequest struct {
	Repo string `json:"repo"` // "owner/repo"
}

func (s *Server) handleImportDocuments(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if !s.requireAdmin(w, r, projectID) {
		return
	}
	if s.importer == nil {
		writeError(w, http.StatusServiceUnavailable, "document import not configured")
		return
	}
	var req importDocumentsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Repo == "" {
		writeError(w, http.StatusBadRequest, "repo is required")
		return
	}

	imported, err := s.importer.ImportDocs(r.Context(), projectID, req.Repo, userID(r))
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to import documentation")
		log.Printf("Error importing docs from %s: %v", req.Repo, err)
		return
	}
	stored := make([]*model.Document, 0, len(imported))
	for _, d := range imported {
		d.CreatedAt = time.Now().UTC()
		if err := s.store.CreateDocument(d); err != nil {
			log.Printf("Error storing imported document %q: %v", d.Title, err)
			continue
		}
		stored = append(stored, d)
	}
	writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	documents, err := s.store.ListDocuments(projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		log.Printf("Error listing documents: %v", err)
		return
	}
	if documents == nil {
		documents = []*model.Document{}
	}
	writeJSON(w, http.StatusOK, documents)
}

// --- Onboarding plan handlers ---

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if !s.requireAdmin(w, r, projectID) {
		return
	}
	var req generatePlanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := s.store.GetRole(req.RoleID)
	if err != nil || role.ProjectID != projectID {
		writeError(w, http.StatusNotFound, "role not found in project")
		return
	}

	// Extract text from the selected documents and chunk it for the prompt.
	var chunks []string
	for _, docID := range req.DocumentIDs {
		doc, err := s.store.GetDocument(docID)
		if err != nil || doc.ProjectID != projectID {
			writeError(w, http.StatusNotFound, "document not found in project")
			return
		}
		s.markDocStatus(docID, model.DocStatusProcessing, 50)
		text := docs.ExtractText(doc.Content, doc.DocType)
		chunks = append(chunks, docs.Chunk(text, docs.DefaultChunkSize, docs.DefaultChunkOverlap)...)
		s.markDocStatus(docID, model.DocStatusCompleted, 100)
	}

	plan, meta := s.planner.Generate(r.Context(), role.Name, req.Stack, chunks)

	d := s.drafts.Stage(projectID, role.ID, plan, meta, req.DocumentIDs, userID(r))
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	d, err := s.drafts.Get(projectID)
	if err != nil {
		writeError(w, http.StatusNotFound, "no draft staged for project")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleApprovePlan(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if !s.requireAdmin(w, r, projectID) {
		return
	}

	d, err := s.drafts.Get(projectID)
	if err != nil {
		writeError(w, http.StatusNotFound, "no draft staged for project")
		return
	}

	result, err := s.drafts.Approve(projectID, userID(r))
	if err != nil {
		if errors.Is(err, draft.ErrNoDraft) {
			writeError(w, http.StatusNotFound, "no draft staged for project")
			return
		}
		// The draft stays staged so the admin can retry.
		writeError(w, http.StatusInternalServerError, "approval failed, draft preserved")
		log.Printf("Error approving plan for project %d: %v", projectID, err)
		return
	}

	s.announceApproval(r, projectID, d.RoleID, result)

	writeJSON(w, http.StatusOK, approveResponse{
		StepsCreated: result.StepsCreated,
		TasksCreated: result.TasksCreated,
		SkippedTasks: result.SkippedTasks,
	})
}

func (s *Server) handleRejectPlan(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if !s.requireAdmin(w, r, projectID) {
		return
	}
	if !s.drafts.Reject(projectID) {
		writeError(w, http.StatusNotFound, "no draft staged for project")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// announceApproval looks up display names and notifies in the background so
// a slow channel never delays the API response.
func (s *Server) announceApproval(r *http.Request, projectID, roleID int64, result *store.ApproveResult) {
	projectName := strconv.FormatInt(projectID, 10)
	if p, err := s.store.GetProject(projectID); err == nil {
		projectName = p.Name
	}
	roleName := strconv.FormatInt(roleID, 10)
	if role, err := s.store.GetRole(roleID); err == nil {
		roleName = role.Name
	}
	approver := userID(r)
	go func() {
		if err := s.notifier.PlanApproved(context.Background(), projectName, roleName, approver, result); err != nil {
			log.Printf("Error notifying plan approval: %v", err)
		}
	}()
}

// --- Contact handlers ---

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var c model.Contact
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if c.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	c.CreatedAt = time.Now().UTC()
	if err := s.store.CreateContact(&c); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create contact")
		log.Printf("Error creating contact: %v", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.store.ListContacts()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list contacts")
		log.Printf("Error listing contacts: %v", err)
		return
	}
	if contacts == nil {
		contacts = []*model.Contact{}
	}
	writeJSON(w, http.StatusOK, contacts)
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := s.store.GetContact(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "contact not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var c model.Contact
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c.ID = id
	if err := s.store.UpdateContact(&c); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "contact not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update contact")
		log.Printf("Error updating contact: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteContact(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "contact not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete contact")
		log.Printf("Error deleting contact: %v", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Approved-plan read handlers ---

func (s *Server) handleListSteps(w http.ResponseWriter, r *http.Request) {
	roleID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	steps, err := s.store.ListSteps(roleID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list steps")
		log.Printf("Error listing steps: %v", err)
		return
	}
	if steps == nil {
		steps = []*model.StepRecord{}
	}
	writeJSON(w, http.StatusOK, steps)
}

func (s *Server) handleListTaskTemplates(w http.ResponseWriter, r *http.Request) {
	stepID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	tasks, err := s.store.ListTaskTemplates(stepID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list task templates")
		log.Printf("Error listing task templates: %v", err)
		return
	}
	if tasks == nil {
		tasks = []*model.TaskTemplateRecord{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleListVersions(w http.ResponseWriter, r *http.Request) {
	stepID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	versions, err := s.store.ListVersions(stepID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list versions")
		log.Printf("Error listing versions: %v", err)
		return
	}
	if versions == nil {
		versions = []*model.VersionRecord{}
	}
	writeJSON(w, http.StatusOK, versions)
}

// --- Per-member onboarding progress handlers ---

// ownMembership loads the membership and verifies it belongs to the caller.
func (s *Server) ownMembership(w http.ResponseWriter, r *http.Request) (*model.Membership, bool) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return nil, false
	}
	uid, ok := requireUser(w, r)
	if !ok {
		return nil, false
	}
	m, err := s.store.GetMembership(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "membership not found")
		return nil, false
	}
	if m.UserID != uid {
		writeError(w, http.StatusForbidden, "not your membership")
		return nil, false
	}
	return m, true
}

func (s *Server) handleOnboardingProgress(w http.ResponseWriter, r *http.Request) {
	m, ok := s.ownMembership(w, r)
	if !ok {
		return
	}
	if m.RoleID == nil {
		writeError(w, http.StatusConflict, "membership has no role assigned")
		return
	}

	steps, err := s.store.ListSteps(*m.RoleID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load onboarding steps")
		log.Printf("Error listing steps for role %d: %v", *m.RoleID, err)
		return
	}
	instances, err := s.store.ListOnboardingTasks(m.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load onboarding tasks")
		log.Printf("Error listing onboarding tasks for membership %d: %v", m.ID, err)
		return
	}
	byTemplate := make(map[int64]*model.OnboardingTask, len(instances))
	for _, inst := range instances {
		byTemplate[inst.TemplateID] = inst
	}

	resp := onboardingProgressResponse{
		MembershipID: m.ID,
		RoleID:       *m.RoleID,
		Steps:        []stepProgress{},
	}
	for _, step := range steps {
		templates, err := s.store.ListTaskTemplates(step.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load task templates")
			log.Printf("Error listing templates for step %d: %v", step.ID, err)
			return
		}
		sp := stepProgress{Step: step, Tasks: []taskProgress{}}
		for _, tmpl := range templates {
			inst := byTemplate[tmpl.ID]
			sp.Tasks = append(sp.Tasks, taskProgress{Template: tmpl, Task: inst})
			resp.TotalTasks++
			if inst != nil && inst.Completed {
				resp.CompletedTasks++
			}
		}
		resp.Steps = append(resp.Steps, sp)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetOnboardingTaskStatus(w http.ResponseWriter, r *http.Request) {
	m, ok := s.ownMembership(w, r)
	if !ok {
		return
	}
	templateID, ok := pathID(w, r, "templateID")
	if !ok {
		return
	}
	var req taskStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !model.ValidTaskStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	task, err := s.store.SetOnboardingTaskStatus(m.ID, templateID, req.Status)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "task template not found for role")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update task status")
		log.Printf("Error setting onboarding task status: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// --- Helpers ---

// userID reads the acting user from the X-User-ID header. Authentication is
// assumed to happen upstream (reverse proxy or gateway).
func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

// requireUser writes a 403 and returns false unless the request identifies a
// user.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusForbidden, "X-User-ID header is required")
		return "", false
	}
	return uid, true
}

// requireAdmin writes a 403 and returns false unless the acting user is an
// admin of the project.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request, projectID int64) bool {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusForbidden, "X-User-ID header is required")
		return false
	}
	admin, err := s.store.IsProjectAdmin(projectID, uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check membership")
		log.Printf("Error checking admin for project %d: %v", projectID, err)
		return false
	}
	if !admin {
		writeError(w, http.StatusForbidden, "project admin required")
		return false
	}
	return true
}

func (s *Server) markDocStatus(docID int64, status string, progress int) {
	if err := s.store.UpdateDocumentStatus(docID, status, progress, ""); err != nil {
		log.Printf("Error updating document %d status: %v", docID, err)
	}
}

// decodeJSON decodes a bounded JSON request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	return json.NewDecoder(r.Body).Decode(v)
}

func pathID(w http.ResponseWriter, r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
