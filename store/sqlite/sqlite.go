// Package sqlite implements store.Store using SQLite.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"rampup/model"
	"rampup/store"
)

// Store manages rampup persistence in SQLite.
type Store struct {
	db *sql.DB
}

// New opens (or creates) a SQLite database at the given path.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL for better concurrent read/write performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS projects (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			creator     TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS project_roles (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id  INTEGER NOT NULL,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			UNIQUE (project_id, name),
			FOREIGN KEY (project_id) REFERENCES projects(id)
		);

		CREATE TABLE IF NOT EXISTS memberships (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL,
			user_id    TEXT NOT NULL,
			role_id    INTEGER,
			is_admin   INTEGER NOT NULL DEFAULT 0,
			added_at   DATETIME NOT NULL DEFAULT (datetime('now')),
			UNIQUE (project_id, user_id),
			FOREIGN KEY (project_id) REFERENCES projects(id)
		);

		CREATE TABLE IF NOT EXISTS contacts (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL DEFAULT '',
			phone      TEXT NOT NULL DEFAULT '',
			company    TEXT NOT NULL DEFAULT '',
			notes      TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS project_tasks (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id     INTEGER NOT NULL,
			title          TEXT NOT NULL CHECK (title <> ''),
			description    TEXT NOT NULL DEFAULT '',
			assigned_to    TEXT NOT NULL DEFAULT '',
			status         TEXT NOT NULL DEFAULT 'todo',
			task_date      TEXT NOT NULL DEFAULT '',
			duration_hours INTEGER NOT NULL DEFAULT 1,
			created_at     DATETIME NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (project_id) REFERENCES projects(id)
		);

		CREATE INDEX IF NOT EXISTS idx_project_tasks_project_id
			ON project_tasks(project_id);
		CREATE INDEX IF NOT EXISTS idx_project_tasks_assigned_to
			ON project_tasks(assigned_to);

		CREATE TABLE IF NOT EXISTS documents (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL,
			title      TEXT NOT NULL,
			doc_type   TEXT NOT NULL DEFAULT 'txt',
			content    TEXT NOT NULL DEFAULT '',
			status     TEXT NOT NULL DEFAULT 'pending',
			progress   INTEGER NOT NULL DEFAULT 0,
			error      TEXT NOT NULL DEFAULT '',
			uploaded_by TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (project_id) REFERENCES projects(id)
		);

		CREATE TABLE IF NOT EXISTS onboarding_steps (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			role_id     INTEGER NOT NULL,
			title       TEXT NOT NULL CHECK (title <> ''),
			description TEXT NOT NULL DEFAULT '',
			step_order  INTEGER NOT NULL DEFAULT 1,
			FOREIGN KEY (role_id) REFERENCES project_roles(id)
		);

		CREATE INDEX IF NOT EXISTS idx_steps_role_id
			ON onboarding_steps(role_id);

		CREATE TABLE IF NOT EXISTS onboarding_task_templates (
			id                   INTEGER PRIMARY KEY AUTOINCREMENT,
			step_id              INTEGER NOT NULL,
			title                TEXT NOT NULL CHECK (title <> ''),
			description          TEXT NOT NULL DEFAULT '',
			is_required          INTEGER NOT NULL DEFAULT 1,
			acceptance_criteria  TEXT NOT NULL DEFAULT '',
			estimated_time_hours REAL NOT NULL DEFAULT 2.0,
			source_context_ids   TEXT NOT NULL DEFAULT '[]',
			depends_on           TEXT NOT NULL DEFAULT '[]',
			FOREIGN KEY (step_id) REFERENCES onboarding_steps(id)
		);

		CREATE INDEX IF NOT EXISTS idx_templates_step_id
			ON onboarding_task_templates(step_id);

		CREATE TABLE IF NOT EXISTS template_versions (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			step_id        INTEGER NOT NULL,
			version        INTEGER NOT NULL DEFAULT 1,
			model_name     TEXT NOT NULL DEFAULT '',
			prompt_hash    TEXT NOT NULL DEFAULT '',
			created_by     TEXT NOT NULL DEFAULT '',
			changelog      TEXT NOT NULL DEFAULT '',
			draft_snapshot TEXT NOT NULL DEFAULT '',
			is_active      INTEGER NOT NULL DEFAULT 1,
			created_at     DATETIME NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (step_id) REFERENCES onboarding_steps(id)
		);

		CREATE INDEX IF NOT EXISTS idx_versions_step_id
			ON template_versions(step_id);

		CREATE TABLE IF NOT EXISTS onboarding_tasks (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			membership_id INTEGER NOT NULL,
			template_id   INTEGER NOT NULL,
			status        TEXT NOT NULL DEFAULT 'todo',
			completed     INTEGER NOT NULL DEFAULT 0,
			completed_at  DATETIME,
			created_at    DATETIME NOT NULL DEFAULT (datetime('now')),
			UNIQUE (membership_id, template_id),
			FOREIGN KEY (membership_id) REFERENCES memberships(id),
			FOREIGN KEY (template_id) REFERENCES onboarding_task_templates(id)
		);

		CREATE INDEX IF NOT EXISTS idx_onboarding_tasks_membership_id
			ON onboarding_tasks(membership_id);
	`)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// --- Projects and roles ---

func (s *Store) CreateProject(p *model.Project) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.Exec(
		`INSERT INTO projects (name, description, creator, created_at) VALUES (?, ?, ?, ?)`,
		p.Name, p.Description, p.Creator, p.CreatedAt,
	)
	if err != nil {
		return err
	}
	p.ID, err = res.LastInsertId()
	return err
}

func (s *Store) GetProject(id int64) (*model.Project, error) {
	p := &model.Project{}
	err := s.db.QueryRow(
		`SELECT id, name, description, creator, created_at FROM projects WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Creator, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) ListProjects() ([]*model.Project, error) {
	rows, err := s.db.Query(
		`SELECT id, name, description, creator, created_at FROM projects ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		p := &model.Project{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Creator, &p.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *Store) CreateRole(r *model.Role) error {
	res, err := s.db.Exec(
		`INSERT INTO project_roles (project_id, name, description) VALUES (?, ?, ?)`,
		r.ProjectID, r.Name, r.Description,
	)
	if err != nil {
		return err
	}
	r.ID, err = res.LastInsertId()
	return err
}

func (s *Store) GetRole(id int64) (*model.Role, error) {
	r := &model.Role{}
	err := s.db.QueryRow(
		`SELECT id, project_id, name, description FROM project_roles WHERE id = ?`, id,
	).Scan(&r.ID, &r.ProjectID, &r.Name, &r.Description)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) ListRoles(projectID int64) ([]*model.Role, error) {
	rows, err := s.db.Query(
		`SELECT id, project_id, name, description FROM project_roles WHERE project_id = ? ORDER BY name`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*model.Role
	for rows.Next() {
		r := &model.Role{}
		if err := rows.Scan(&r.ID, &r.ProjectID, &r.Name, &r.Description); err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

// --- Memberships ---

func (s *Store) AddMembership(m *model.Membership) error {
	if m.AddedAt.IsZero() {
		m.AddedAt = time.Now().UTC()
	}
	res, err := s.db.Exec(
		`INSERT INTO memberships (project_id, user_id, role_id, is_admin, added_at) VALUES (?, ?, ?, ?, ?)`,
		m.ProjectID, m.UserID, m.RoleID, m.IsAdmin, m.AddedAt,
	)
	if err != nil {
		return err
	}
	m.ID, err = res.LastInsertId()
	return err
}

func (s *Store) GetMembership(id int64) (*model.Membership, error) {
	m := &model.Membership{}
	err := s.db.QueryRow(
		`SELECT id, project_id, user_id, role_id, is_admin, added_at FROM memberships WHERE id = ?`, id,
	).Scan(&m.ID, &m.ProjectID, &m.UserID, &m.RoleID, &m.IsAdmin, &m.AddedAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) ListMemberships(projectID int64) ([]*model.Membership, error) {
	rows, err := s.db.Query(
		`SELECT id, project_id, user_id, role_id, is_admin, added_at FROM memberships WHERE project_id = ?`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*model.Membership
	for rows.Next() {
		m := &model.Membership{}
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.UserID, &m.RoleID, &m.IsAdmin, &m.AddedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *Store) IsProjectAdmin(projectID int64, userID string) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM memberships WHERE project_id = ? AND user_id = ? AND is_admin = 1`,
		projectID, userID,
	).Scan(&n)
	return n > 0, err
}

// --- Contacts ---

func (s *Store) CreateContact(c *model.Contact) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.Exec(
		`INSERT INTO contacts (name, email, phone, company, notes, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.Name, c.Email, c.Phone, c.Company, c.Notes, c.CreatedAt,
	)
	if err != nil {
		return err
	}
	c.ID, err = res.LastInsertId()
	return err
}

func (s *Store) GetContact(id int64) (*model.Contact, error) {
	c := &model.Contact{}
	err := s.db.QueryRow(
		`SELECT id, name, email, phone, company, notes, created_at FROM contacts WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Notes, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) ListContacts() ([]*model.Contact, error) {
	rows, err := s.db.Query(
		`SELECT id, name, email, phone, company, notes, created_at FROM contacts ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []*model.Contact
	for rows.Next() {
		c := &model.Contact{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Notes, &c.CreatedAt); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (s *Store) UpdateContact(c *model.Contact) error {
	res, err := s.db.Exec(
		`UPDATE contacts SET name = ?, email = ?, phone = ?, company = ?, notes = ? WHERE id = ?`,
		c.Name, c.Email, c.Phone, c.Company, c.Notes, c.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return store.ErrNotFound
	}
	return err
}

func (s *Store) DeleteContact(id int64) error {
	res, err := s.db.Exec(`DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return store.ErrNotFound
	}
	return err
}

// --- Project tasks ---

func (s *Store) CreateProjectTask(t *model.ProjectTask) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.Status == "" {
		t.Status = model.TaskStatusTodo
	}
	if t.DurationHours <= 0 {
		t.DurationHours = 1
	}
	res, err := s.db.Exec(
		`INSERT INTO project_tasks (project_id, title, description, assigned_to, status, task_date, duration_hours, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ProjectID, t.Title, t.Description, t.AssignedTo, t.Status, t.Date, t.DurationHours, t.CreatedAt,
	)
	if err != nil {
		return err
	}
	t.ID, err = res.LastInsertId()
	return err
}

func (s *Store) GetProjectTask(id int64) (*model.ProjectTask, error) {
	t := &model.ProjectTask{}
	err := s.db.QueryRow(
		`SELECT id, project_id, title, description, assigned_to, status, task_date, duration_hours, created_at
		 FROM project_tasks WHERE id = ?`, id,
	).Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.AssignedTo, &t.Status, &t.Date, &t.DurationHours, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Store) ListProjectTasks(projectID int64) ([]*model.ProjectTask, error) {
	return s.queryProjectTasks(
		`SELECT id, project_id, title, description, assigned_to, status, task_date, duration_hours, created_at
		 FROM project_tasks WHERE project_id = ? ORDER BY task_date, id`,
		projectID,
	)
}

func (s *Store) ListAssignedTasks(userID string) ([]*model.ProjectTask, error) {
	return s.queryProjectTasks(
		`SELECT id, project_id, title, description, assigned_to, status, task_date, duration_hours, created_at
		 FROM project_tasks WHERE assigned_to = ? ORDER BY task_date, id`,
		userID,
	)
}

func (s *Store) queryProjectTasks(query string, arg any) ([]*model.ProjectTask, error) {
	rows, err := s.db.Query(query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*model.ProjectTask
	for rows.Next() {
		t := &model.ProjectTask{}
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.AssignedTo,
			&t.Status, &t.Date, &t.DurationHours, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) UpdateProjectTask(t *model.ProjectTask) error {
	res, err := s.db.Exec(
		`UPDATE project_tasks SET title = ?, description = ?, assigned_to = ?, status = ?, task_date = ?, duration_hours = ?
		 WHERE id = ?`,
		t.Title, t.Description, t.AssignedTo, t.Status, t.Date, t.DurationHours, t.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return store.ErrNotFound
	}
	return err
}

func (s *Store) DeleteProjectTask(id int64) error {
	res, err := s.db.Exec(`DELETE FROM project_tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return store.ErrNotFound
	}
	return err
}

// --- Documentation sources ---

func (s *Store) CreateDocument(d *model.Document) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	if d.Status == "" {
		d.Status = model.DocStatusPending
	}
	if d.DocType == "" {
		d.DocType = "txt"
	}
	res, err := s.db.Exec(
		`INSERT INTO documents (project_id, title, doc_type, content, status, progress, error, uploaded_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ProjectID, d.Title, d.DocType, d.Content, d.Status, d.Progress, d.Error, d.UploadedBy, d.CreatedAt,
	)
	if err != nil {
		return err
	}
	d.ID, err = res.LastInsertId()
	return err
}

func (s *Store) GetDocument(id int64) (*model.Document, error) {
	d := &model.Document{}
	err := s.db.QueryRow(
		`SELECT id, project_id, title, doc_type, content, status, progress, error, uploaded_by, created_at
		 FROM documents WHERE id = ?`, id,
	).Scan(&d.ID, &d.ProjectID, &d.Title, &d.DocType, &d.Content, &d.Status, &d.Progress, &d.Error, &d.UploadedBy, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Store) ListDocuments(projectID int64) ([]*model.Document, error) {
	rows, err := s.db.Query(
		`SELECT id, project_id, title, doc_type, content, status, progress, error, uploaded_by, created_at
		 FROM documents WHERE project_id = ? ORDER BY created_at DESC`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*model.Document
	for rows.Next() {
		d := &model.Document{}
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.Title, &d.DocType, &d.Content,
			&d.Status, &d.Progress, &d.Error, &d.UploadedBy, &d.CreatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *Store) UpdateDocumentStatus(id int64, status string, progress int, errMsg string) error {
	res, err := s.db.Exec(
		`UPDATE documents SET status = ?, progress = ?, error = ? WHERE id = ?`,
		status, progress, errMsg, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return store.ErrNotFound
	}
	return err
}

// --- Plan approval ---

// ApprovePlan expands the approved draft into persistent records inside a
// single transaction. Steps keep their order; every step gets one immutable
// audit version capturing the generation metadata and a snapshot of the full
// draft; task templates are created under their step, skipping (with a
// warning) any task whose step_id does not resolve. Any failure rolls back
// all writes.
func (s *Store) ApprovePlan(roleID int64, plan *model.Plan, meta model.Metadata, createdBy string, sourceDocIDs []int64) (*store.ApproveResult, error) {
	if plan == nil || len(plan.Steps) == 0 {
		return nil, fmt.Errorf("plan has no steps")
	}
	if _, err := s.GetRole(roleID); err != nil {
		return nil, fmt.Errorf("loading role %d: %w", roleID, err)
	}

	snapshot, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("encoding draft snapshot: %w", err)
	}
	docIDs, err := json.Marshal(sourceDocIDs)
	if err != nil {
		return nil, fmt.Errorf("encoding source context ids: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result := &store.ApproveResult{}
	stepMap := make(map[string]int64, len(plan.Steps))

	for _, st := range plan.Steps {
		res, err := tx.Exec(
			`INSERT INTO onboarding_steps (role_id, title, description, step_order) VALUES (?, ?, ?, ?)`,
			roleID, st.Title, st.Description, st.Order,
		)
		if err != nil {
			return nil, fmt.Errorf("creating step %q: %w", st.ID, err)
		}
		stepRowID, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		stepMap[st.ID] = stepRowID
		result.StepsCreated++

		if _, err := tx.Exec(
			`INSERT INTO template_versions (step_id, version, model_name, prompt_hash, created_by, changelog, draft_snapshot, is_active)
			 VALUES (?, 1, ?, ?, ?, ?, ?, 1)`,
			stepRowID, meta.Model, meta.PromptHash, createdBy,
			"Auto-generated plan, reviewed and approved by admin", string(snapshot),
		); err != nil {
			return nil, fmt.Errorf("creating version for step %q: %w", st.ID, err)
		}
	}

	for _, tk := range plan.Tasks {
		stepRowID, found := stepMap[tk.StepID]
		if !found {
			log.Printf("step %q not found for task %q, skipping", tk.StepID, tk.Title)
			result.SkippedTasks = append(result.SkippedTasks, tk.Title)
			continue
		}

		isRequired := true
		if tk.IsRequired != nil {
			isRequired = bool(*tk.IsRequired)
		}
		hours := 2.0
		if tk.EstimatedTimeHours != nil {
			hours = *tk.EstimatedTimeHours
		}
		dependsOn, err := json.Marshal(tk.DependsOn)
		if err != nil {
			return nil, fmt.Errorf("encoding depends_on for task %q: %w", tk.Title, err)
		}

		if _, err := tx.Exec(
			`INSERT INTO onboarding_task_templates
			 (step_id, title, description, is_required, acceptance_criteria, estimated_time_hours, source_context_ids, depends_on)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			stepRowID, tk.Title, tk.Description, isRequired,
			strings.Join(tk.AcceptanceCriteria, "\n"), hours, string(docIDs), string(dependsOn),
		); err != nil {
			return nil, fmt.Errorf("creating task template %q: %w", tk.Title, err)
		}
		result.TasksCreated++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing approval: %w", err)
	}
	return result, nil
}

// --- Approved-plan reads ---

func (s *Store) ListSteps(roleID int64) ([]*model.StepRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, role_id, title, description, step_order
		 FROM onboarding_steps WHERE role_id = ? ORDER BY step_order, id`,
		roleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []*model.StepRecord
	for rows.Next() {
		st := &model.StepRecord{}
		if err := rows.Scan(&st.ID, &st.RoleID, &st.Title, &st.Description, &st.Order); err != nil {
			return nil, err
		}
		steps = append(steps, st)
	}
	return steps, rows.Err()
}

func (s *Store) ListTaskTemplates(stepID int64) ([]*model.TaskTemplateRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, step_id, title, description, is_required, acceptance_criteria,
		        estimated_time_hours, source_context_ids, depends_on
		 FROM onboarding_task_templates WHERE step_id = ? ORDER BY id`,
		stepID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*model.TaskTemplateRecord
	for rows.Next() {
		t := &model.TaskTemplateRecord{}
		var docIDs, dependsOn string
		if err := rows.Scan(&t.ID, &t.StepID, &t.Title, &t.Description, &t.IsRequired,
			&t.AcceptanceCriteria, &t.EstimatedTimeHours, &docIDs, &dependsOn); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(docIDs), &t.SourceContextIDs); err != nil {
			return nil, fmt.Errorf("decoding source context ids: %w", err)
		}
		if err := json.Unmarshal([]byte(dependsOn), &t.DependsOn); err != nil {
			return nil, fmt.Errorf("decoding depends_on: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (s *Store) ListVersions(stepID int64) ([]*model.VersionRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, step_id, version, model_name, prompt_hash, created_by, changelog,
		        draft_snapshot, is_active, created_at
		 FROM template_versions WHERE step_id = ? ORDER BY version, id`,
		stepID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []*model.VersionRecord
	for rows.Next() {
		v := &model.VersionRecord{}
		if err := rows.Scan(&v.ID, &v.StepID, &v.Version, &v.ModelName, &v.PromptHash,
			&v.CreatedBy, &v.Changelog, &v.DraftSnapshot, &v.IsActive, &v.CreatedAt); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// --- Per-member onboarding progress ---

func (s *Store) ListOnboardingTasks(membershipID int64) ([]*model.OnboardingTask, error) {
	rows, err := s.db.Query(
		`SELECT id, membership_id, template_id, status, completed, completed_at, created_at
		 FROM onboarding_tasks WHERE membership_id = ? ORDER BY id`,
		membershipID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*model.OnboardingTask
	for rows.Next() {
		t := &model.OnboardingTask{}
		var completedAt sql.NullTime
		if err := rows.Scan(&t.ID, &t.MembershipID, &t.TemplateID, &t.Status,
			&t.Completed, &completedAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		if completedAt.Valid {
			t.CompletedAt = &completedAt.Time
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// SetOnboardingTaskStatus creates the member's instance of the template on
// first touch and updates it afterwards. Moving to completed stamps
// completed_at; moving away clears it.
func (s *Store) SetOnboardingTaskStatus(membershipID, templateID int64, status string) (*model.OnboardingTask, error) {
	if !model.ValidTaskStatus(status) {
		return nil, fmt.Errorf("unknown task status %q", status)
	}
	m, err := s.GetMembership(membershipID)
	if err != nil {
		return nil, err
	}

	// The template must belong to a step of the membership's role.
	var roleID int64
	err = s.db.QueryRow(
		`SELECT st.role_id FROM onboarding_task_templates t
		 JOIN onboarding_steps st ON t.step_id = st.id
		 WHERE t.id = ?`, templateID,
	).Scan(&roleID)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if m.RoleID == nil || *m.RoleID != roleID {
		return nil, store.ErrNotFound
	}

	completed := status == model.TaskStatusCompleted
	now := time.Now().UTC()
	var completedAt *time.Time
	if completed {
		completedAt = &now
	}

	res, err := s.db.Exec(
		`UPDATE onboarding_tasks SET status = ?, completed = ?, completed_at = ?
		 WHERE membership_id = ? AND template_id = ?`,
		status, completed, completedAt, membershipID, templateID,
	)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if _, err := s.db.Exec(
			`INSERT INTO onboarding_tasks (membership_id, template_id, status, completed, completed_at, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			membershipID, templateID, status, completed, completedAt, now,
		); err != nil {
			return nil, err
		}
	}
	return s.getOnboardingTask(membershipID, templateID)
}

func (s *Store) getOnboardingTask(membershipID, templateID int64) (*model.OnboardingTask, error) {
	t := &model.OnboardingTask{}
	var completedAt sql.NullTime
	err := s.db.QueryRow(
		`SELECT id, membership_id, template_id, status, completed, completed_at, created_at
		 FROM onboarding_tasks WHERE membership_id = ? AND template_id = ?`,
		membershipID, templateID,
	).Scan(&t.ID, &t.MembershipID, &t.TemplateID, &t.Status, &t.Completed, &completedAt, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	return t, nil
}
