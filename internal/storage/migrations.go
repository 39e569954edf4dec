package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// Migration represents a database migration.
type Migration struct {
	Version int
	Name    string
	Up      string
}

// migrations holds all database migrations in order.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		Up: `
			-- Users and their global roles
			CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				email TEXT UNIQUE NOT NULL,
				password_hash TEXT NOT NULL,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			);

			CREATE TABLE IF NOT EXISTS user_roles (
				user_id TEXT NOT NULL,
				role TEXT NOT NULL,
				PRIMARY KEY (user_id, role),
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			);

			-- Projects
			CREATE TABLE IF NOT EXISTS projects (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				description TEXT,
				start_date DATETIME NOT NULL,
				end_date DATETIME,
				progress INTEGER NOT NULL DEFAULT 0,
				status TEXT NOT NULL DEFAULT 'active',
				archived INTEGER NOT NULL DEFAULT 0,
				admin_comment TEXT,
				budget REAL,
				budget_file TEXT,
				schedule_file TEXT,
				creator_id TEXT NOT NULL,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				FOREIGN KEY (creator_id) REFERENCES users(id)
			);

			-- Project role bindings (one role per user per project)
			CREATE TABLE IF NOT EXISTS project_roles (
				project_id TEXT NOT NULL,
				user_id TEXT NOT NULL,
				role TEXT NOT NULL,
				PRIMARY KEY (project_id, user_id),
				FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			);

			-- Tasks
			CREATE TABLE IF NOT EXISTS tasks (
				id TEXT PRIMARY KEY,
				project_id TEXT NOT NULL,
				name TEXT NOT NULL,
				description TEXT,
				start_date DATETIME NOT NULL,
				end_date DATETIME,
				status TEXT NOT NULL DEFAULT 'pending',
				responsible_id TEXT,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
				FOREIGN KEY (responsible_id) REFERENCES users(id)
			);

			CREATE TABLE IF NOT EXISTS task_comments (
				id TEXT PRIMARY KEY,
				task_id TEXT NOT NULL,
				project_id TEXT NOT NULL,
				user_id TEXT NOT NULL,
				content TEXT NOT NULL,
				created_at DATETIME NOT NULL,
				FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE,
				FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
				FOREIGN KEY (user_id) REFERENCES users(id)
			);

			-- Approval flows over completed tasks
			CREATE TABLE IF NOT EXISTS approval_flows (
				id TEXT PRIMARY KEY,
				task_id TEXT NOT NULL,
				name TEXT NOT NULL,
				description TEXT,
				status TEXT NOT NULL DEFAULT 'pending',
				reviewer_id TEXT NOT NULL,
				reviewed_at DATETIME,
				created_at DATETIME NOT NULL,
				FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE,
				FOREIGN KEY (reviewer_id) REFERENCES users(id)
			);

			-- Incident reports
			CREATE TABLE IF NOT EXISTS incidents (
				id TEXT PRIMARY KEY,
				reported_at DATETIME NOT NULL,
				reporter_id TEXT NOT NULL,
				reporter_name TEXT NOT NULL,
				reporter_role TEXT,
				reporter_email TEXT NOT NULL,
				reporter_phone TEXT,
				project_id TEXT NOT NULL,
				location TEXT NOT NULL,
				occurred_at DATETIME NOT NULL,
				incident_type TEXT NOT NULL,
				description TEXT NOT NULL,
				environment TEXT,
				affected_persons TEXT,
				injuries TEXT,
				witnesses TEXT,
				equipment_involved TEXT,
				property_damage TEXT,
				corrective_actions TEXT NOT NULL,
				emergency_services INTEGER NOT NULL DEFAULT 0,
				emergency_details TEXT,
				root_cause TEXT,
				preventive_actions TEXT,
				photo_path TEXT,
				attachment_path TEXT,
				evidence_comment TEXT,
				severity TEXT NOT NULL DEFAULT 'low',
				status TEXT NOT NULL DEFAULT 'open',
				responsible_id TEXT,
				closed_at DATETIME,
				FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
				FOREIGN KEY (reporter_id) REFERENCES users(id),
				FOREIGN KEY (responsible_id) REFERENCES users(id)
			);

			-- Daily checklists
			CREATE TABLE IF NOT EXISTS checklist_items (
				id TEXT PRIMARY KEY,
				project_id TEXT NOT NULL,
				item_text TEXT NOT NULL,
				active INTEGER NOT NULL DEFAULT 1,
				FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
			);

			CREATE TABLE IF NOT EXISTS checklist_completions (
				id TEXT PRIMARY KEY,
				item_id TEXT NOT NULL,
				user_id TEXT NOT NULL,
				date TEXT NOT NULL,
				completed INTEGER NOT NULL DEFAULT 0,
				UNIQUE (item_id, user_id, date),
				FOREIGN KEY (item_id) REFERENCES checklist_items(id) ON DELETE CASCADE,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			);

			-- Notifications
			CREATE TABLE IF NOT EXISTS notifications (
				id TEXT PRIMARY KEY,
				recipient_id TEXT NOT NULL,
				title TEXT NOT NULL,
				message TEXT NOT NULL,
				read INTEGER NOT NULL DEFAULT 0,
				created_at DATETIME NOT NULL,
				FOREIGN KEY (recipient_id) REFERENCES users(id) ON DELETE CASCADE
			);

			-- Progress entries (avances) and photos
			CREATE TABLE IF NOT EXISTS progress_entries (
				id TEXT PRIMARY KEY,
				project_id TEXT NOT NULL,
				user_id TEXT NOT NULL,
				description TEXT NOT NULL,
				date DATETIME NOT NULL,
				FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
				FOREIGN KEY (user_id) REFERENCES users(id)
			);

			CREATE TABLE IF NOT EXISTS progress_photos (
				id TEXT PRIMARY KEY,
				entry_id TEXT NOT NULL,
				path TEXT NOT NULL,
				uploaded_at DATETIME NOT NULL,
				FOREIGN KEY (entry_id) REFERENCES progress_entries(id) ON DELETE CASCADE
			);

			-- Uploaded documents
			CREATE TABLE IF NOT EXISTS documents (
				id TEXT PRIMARY KEY,
				project_id TEXT NOT NULL,
				user_id TEXT NOT NULL,
				path TEXT NOT NULL,
				file_name TEXT NOT NULL,
				version INTEGER NOT NULL DEFAULT 1,
				description TEXT,
				uploaded_at DATETIME NOT NULL,
				FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
				FOREIGN KEY (user_id) REFERENCES users(id)
			);

			-- Contact messages
			CREATE TABLE IF NOT EXISTS contact_messages (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				email TEXT NOT NULL,
				phone TEXT,
				company TEXT,
				message TEXT NOT NULL,
				read INTEGER NOT NULL DEFAULT 0,
				created_at DATETIME NOT NULL
			);

			-- Indexes
			CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
			CREATE INDEX IF NOT EXISTS idx_projects_creator ON projects(creator_id);
			CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);
			CREATE INDEX IF NOT EXISTS idx_tasks_responsible ON tasks(responsible_id);
			CREATE INDEX IF NOT EXISTS idx_comments_task ON task_comments(task_id);
			CREATE INDEX IF NOT EXISTS idx_flows_task ON approval_flows(task_id);
			CREATE INDEX IF NOT EXISTS idx_flows_reviewer ON approval_flows(reviewer_id);
			CREATE INDEX IF NOT EXISTS idx_incidents_project ON incidents(project_id);
			CREATE INDEX IF NOT EXISTS idx_incidents_status ON incidents(status);
			CREATE INDEX IF NOT EXISTS idx_checklist_project ON checklist_items(project_id);
			CREATE INDEX IF NOT EXISTS idx_completions_user_date ON checklist_completions(user_id, date);
			CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id, read);
			CREATE INDEX IF NOT EXISTS idx_progress_project ON progress_entries(project_id);
			CREATE INDEX IF NOT EXISTS idx_documents_project ON documents(project_id);
		`,
	},
}

// runMigrations applies all pending migrations.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("get current version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction for migration %d: %w", m.Version, err)
		}

		_, err = tx.Exec(m.Up)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("execute migration %d (%s): %w", m.Version, m.Name, err)
		}

		_, err = tx.Exec(
			"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
			m.Version, m.Name, time.Now(),
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}
