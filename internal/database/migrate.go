package database

import (
	"context"
	"database/sql"
	"log"
	"time"
)

// Migrate creates every table the service needs.  Statements are idempotent
// (CREATE TABLE IF NOT EXISTS) so the function is safe to run on every
// startup.  Tables are created leaves-first so that foreign keys resolve.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id CHAR(36) PRIMARY KEY,
			username VARCHAR(64) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(100) NOT NULL,
			role VARCHAR(16) NOT NULL DEFAULT 'USER',
			is_active TINYINT(1) NOT NULL DEFAULT 0,
			phone VARCHAR(32) NULL,
			avatar VARCHAR(255) NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS member_profiles (
			member_id CHAR(36) PRIMARY KEY,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT fk_member_user FOREIGN KEY (member_id) REFERENCES users(id) ON DELETE CASCADE
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS books (
			id CHAR(36) PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			author VARCHAR(255) NOT NULL,
			copies INT UNSIGNED NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uq_books_title_author (title, author)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS borrow_records (
			id CHAR(36) PRIMARY KEY,
			member_id CHAR(36) NOT NULL,
			book_id CHAR(36) NOT NULL,
			due_date DATETIME NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_borrow_member (member_id),
			KEY idx_borrow_book (book_id),
			CONSTRAINT fk_borrow_member FOREIGN KEY (member_id) REFERENCES member_profiles(member_id) ON DELETE CASCADE,
			CONSTRAINT fk_borrow_book FOREIGN KEY (book_id) REFERENCES books(id) ON DELETE CASCADE
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS student_profiles (
			student_id CHAR(36) PRIMARY KEY,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT fk_student_user FOREIGN KEY (student_id) REFERENCES users(id) ON DELETE CASCADE
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS teacher_profiles (
			teacher_id CHAR(36) PRIMARY KEY,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT fk_teacher_user FOREIGN KEY (teacher_id) REFERENCES users(id) ON DELETE CASCADE
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS subjects (
			id CHAR(36) PRIMARY KEY,
			name VARCHAR(100) NOT NULL UNIQUE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS student_subjects (
			student_id CHAR(36) NOT NULL,
			subject_id CHAR(36) NOT NULL,
			PRIMARY KEY (student_id, subject_id),
			CONSTRAINT fk_ss_student FOREIGN KEY (student_id) REFERENCES student_profiles(student_id) ON DELETE CASCADE,
			CONSTRAINT fk_ss_subject FOREIGN KEY (subject_id) REFERENCES subjects(id) ON DELETE CASCADE
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS teacher_subjects (
			teacher_id CHAR(36) NOT NULL,
			subject_id CHAR(36) NOT NULL,
			PRIMARY KEY (teacher_id, subject_id),
			CONSTRAINT fk_ts_teacher FOREIGN KEY (teacher_id) REFERENCES teacher_profiles(teacher_id) ON DELETE CASCADE,
			CONSTRAINT fk_ts_subject FOREIGN KEY (subject_id) REFERENCES subjects(id) ON DELETE CASCADE
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS subject_grades (
			id CHAR(36) PRIMARY KEY,
			subject_id CHAR(36) NOT NULL,
			student_id CHAR(36) NOT NULL,
			grade DOUBLE NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_grade_student (student_id),
			CONSTRAINT fk_grade_subject FOREIGN KEY (subject_id) REFERENCES subjects(id) ON DELETE CASCADE,
			CONSTRAINT fk_grade_student FOREIGN KEY (student_id) REFERENCES student_profiles(student_id) ON DELETE CASCADE
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS blogs (
			id CHAR(36) PRIMARY KEY,
			user_id CHAR(36) NOT NULL,
			title VARCHAR(255) NOT NULL,
			body TEXT NOT NULL,
			image VARCHAR(255) NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_blogs_user (user_id),
			CONSTRAINT fk_blog_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS comments (
			id CHAR(36) PRIMARY KEY,
			blog_id CHAR(36) NOT NULL,
			user_id CHAR(36) NOT NULL,
			comment TEXT NOT NULL,
			image VARCHAR(255) NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_comments_blog (blog_id),
			CONSTRAINT fk_comment_blog FOREIGN KEY (blog_id) REFERENCES blogs(id) ON DELETE CASCADE,
			CONSTRAINT fk_comment_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		) ENGINE=InnoDB`,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Printf("migrate: statement failed: %v", err)
			return err
		}
	}
	return nil
}
