// services/backup_service.go
package services

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/iabigrejinha/iab_finance_backend/config"
)

// Backup log statuses.
const (
	BackupStatusChecking  = "checking"
	BackupStatusNoChanges = "no_changes"
	BackupStatusSent      = "sent"
	BackupStatusFailed    = "failed"
	BackupStatusError     = "error"
)

// BackupService produces SQL exports of the database and mails the raw
// database file to the root user once a week.
type BackupService struct {
	db     *sql.DB
	dbPath string
}

func NewBackupService(db *sql.DB, dbPath string) *BackupService {
	return &BackupService{db: db, dbPath: dbPath}
}

// ExportSQL renders the whole database as executable SQL: the schema from
// sqlite_master followed by INSERT statements for every row.
func (s *BackupService) ExportSQL() (string, error) {
	var b strings.Builder
	b.WriteString("-- Sistema Financeiro IAB - export\n")
	b.WriteString("-- Gerado em " + time.Now().Format(time.RFC3339) + "\n\n")
	b.WriteString("PRAGMA foreign_keys = OFF;\nBEGIN TRANSACTION;\n\n")

	rows, err := s.db.Query(`
		SELECT name, sql FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name, ddl string
		if err := rows.Scan(&name, &ddl); err != nil {
			return "", err
		}
		b.WriteString(ddl + ";\n\n")
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	for _, table := range tables {
		if err := s.dumpTable(&b, table); err != nil {
			return "", err
		}
	}

	b.WriteString("COMMIT;\nPRAGMA foreign_keys = ON;\n")
	return b.String(), nil
}

func (s *BackupService) dumpTable(b *strings.Builder, table string) error {
	rows, err := s.db.Query("SELECT * FROM " + table)
	if err != nil {
		return err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return err
	}
	values := make([]interface{}, len(columns))
	scanners := make([]interface{}, len(columns))
	for i := range values {
		scanners[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanners...); err != nil {
			return err
		}
		literals := make([]string, len(values))
		for i, v := range values {
			literals[i] = sqlLiteral(v)
		}
		fmt.Fprintf(b, "INSERT INTO %s (%s) VALUES (%s);\n",
			table, strings.Join(columns, ", "), strings.Join(literals, ", "))
	}
	b.WriteString("\n")
	return rows.Err()
}

func sqlLiteral(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return "NULL"
	case int64:
		return fmt.Sprintf("%d", value)
	case float64:
		return fmt.Sprintf("%g", value)
	case bool:
		if value {
			return "1"
		}
		return "0"
	case []byte:
		return "'" + strings.ReplaceAll(string(value), "'", "''") + "'"
	case time.Time:
		return "'" + config.FormatTime(value) + "'"
	default:
		return "'" + strings.ReplaceAll(fmt.Sprintf("%v", value), "'", "''") + "'"
	}
}

// DatabaseBytes reads the raw database file for attachment to the backup
// email or a download response.
func (s *BackupService) DatabaseBytes() ([]byte, error) {
	return os.ReadFile(s.dbPath)
}

// WeeklyChanges counts rows created since the last successfully sent
// backup, falling back to a seven day window when none was ever sent.
func (s *BackupService) WeeklyChanges() (int, error) {
	var since time.Time
	err := s.db.QueryRow(`
		SELECT backup_date FROM backup_log
		WHERE email_sent = 1
		ORDER BY backup_date DESC LIMIT 1`).Scan(&since)
	if errors.Is(err, sql.ErrNoRows) {
		since = time.Now().AddDate(0, 0, -7)
	} else if err != nil {
		return 0, err
	}

	// The watermark is bound as CURRENT_TIMESTAMP-format text so the
	// comparison against stored timestamps stays a like-for-like one.
	mark := config.FormatTime(since)
	var total int
	err = s.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM movements WHERE created_at > ?) +
			(SELECT COUNT(*) FROM users WHERE created_at > ?) +
			(SELECT COUNT(*) FROM categories WHERE is_system = 0 AND created_at > ?)`,
		mark, mark, mark).Scan(&total)
	return total, err
}

// RunWeeklyBackup performs one backup cycle: detect changes, skip when
// nothing happened, otherwise mail the database file to the oldest root
// user. Every cycle leaves a backup_log row behind.
func (s *BackupService) RunWeeklyBackup() {
	changes, err := s.WeeklyChanges()
	if err != nil {
		log.Printf("backup: change detection failed: %v", err)
		return
	}

	result, err := s.db.Exec(
		"INSERT INTO backup_log (changes_count, status) VALUES (?, ?)",
		changes, BackupStatusChecking)
	if err != nil {
		log.Printf("backup: log insert failed: %v", err)
		return
	}
	logID, _ := result.LastInsertId()

	if changes == 0 {
		s.finishLog(logID, BackupStatusNoChanges, false)
		log.Println("backup: no changes this week, skipping")
		return
	}

	email, name, err := s.rootRecipient()
	if err != nil {
		log.Printf("backup: no root recipient: %v", err)
		s.finishLog(logID, BackupStatusError, false)
		return
	}

	data, err := s.DatabaseBytes()
	if err != nil {
		log.Printf("backup: reading database failed: %v", err)
		s.finishLog(logID, BackupStatusError, false)
		return
	}

	filename := fmt.Sprintf("iab_finance_backup_%s.db", time.Now().Format("2006-01-02"))
	if err := s.sendBackupEmail(email, name, changes, filename, data); err != nil {
		log.Printf("backup: email failed: %v", err)
		s.finishLog(logID, BackupStatusFailed, false)
		return
	}

	s.finishLog(logID, BackupStatusSent, true)
	log.Printf("backup: sent %d bytes to %s", len(data), email)
}

func (s *BackupService) finishLog(id int64, status string, emailSent bool) {
	_, err := s.db.Exec("UPDATE backup_log SET status = ?, email_sent = ? WHERE id = ?",
		status, emailSent, id)
	if err != nil {
		log.Printf("backup: log update failed: %v", err)
	}
}

func (s *BackupService) rootRecipient() (email, name string, err error) {
	err = s.db.QueryRow(`
		SELECT email, name FROM users
		WHERE role = 'root' AND email != ''
		ORDER BY created_at ASC LIMIT 1`).Scan(&email, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", errors.New("nenhum usuário root com email cadastrado")
	}
	return email, name, err
}

func (s *BackupService) sendBackupEmail(to, name string, changes int, filename string, data []byte) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	from := os.Getenv("FROM_EMAIL")
	if from == "" {
		from = smtpUser
	}
	smtpPort := 587
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		fmt.Sscanf(portStr, "%d", &smtpPort)
	}

	end := time.Now()
	start := end.AddDate(0, 0, -7)
	period := start.Format("02/01/2006") + " a " + end.Format("02/01/2006")

	body := fmt.Sprintf(
		"Olá %s,\n\n"+
			"Seu backup semanal foi gerado automaticamente pelo sistema.\n\n"+
			"Período: %s\n"+
			"Alterações detectadas: %d\n\n"+
			"O arquivo %s está em anexo. Mantenha-o em local seguro.\n\n"+
			"Sistema Financeiro IAB",
		name, period, changes, filename)

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Backup Semanal - Sistema Financeiro IAB (%s)", period))
	m.SetBody("text/plain", body)
	m.Attach(filename, gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}))

	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	return d.DialAndSend(m)
}
