package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Users
// ============================================================

// User roles
const (
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
	RoleParent     = "parent" // reserved, no behavior yet
)

// User represents users table
type User struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	PublicID         string         `gorm:"uniqueIndex;size:36;not null" json:"public_id"`
	Username         string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Name             string         `gorm:"size:100;not null" json:"name"`
	Role             string         `gorm:"size:20;not null" json:"role"`
	Age              int            `json:"age"`
	PasswordHash     string         `gorm:"size:255;not null" json:"-"`
	ParentalCodeHash string         `gorm:"size:255" json:"-"`
	PaymentMethod    string         `gorm:"size:50" json:"payment_method"`
	PaymentNumber    string         `gorm:"size:100" json:"payment_number"`
	TaskQuota        int            `gorm:"default:5" json:"task_quota"`
	Balance          int64          `gorm:"default:0" json:"balance"`
	XP               int64          `gorm:"column:xp;default:0" json:"xp"`
	IsActive         bool           `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// IsFreelancer reports whether the user holds the freelancer role
func (u *User) IsFreelancer() bool {
	return u.Role == RoleFreelancer
}

// IsClient reports whether the user holds the client role
func (u *User) IsClient() bool {
	return u.Role == RoleClient
}

// HasPaymentDetails reports whether payout method and account are both set
func (u *User) HasPaymentDetails() bool {
	return u.PaymentMethod != "" && u.PaymentNumber != ""
}

// UserResponse DTO
type UserResponse struct {
	ID            uint      `json:"id"`
	PublicID      string    `json:"public_id"`
	Username      string    `json:"username"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	Age           int       `json:"age"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	PaymentNumber string    `json:"payment_number,omitempty"`
	TaskQuota     int       `json:"task_quota"`
	Balance       int64     `json:"balance"`
	XP            int64     `json:"xp"`
	CreatedAt     time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:            u.ID,
		PublicID:      u.PublicID,
		Username:      u.Username,
		Name:          u.Name,
		Role:          u.Role,
		Age:           u.Age,
		PaymentMethod: u.PaymentMethod,
		PaymentNumber: u.PaymentNumber,
		TaskQuota:     u.TaskQuota,
		Balance:       u.Balance,
		XP:            u.XP,
		CreatedAt:     u.CreatedAt,
	}
}

// ============================================================
// Tasks
// ============================================================

// Task statuses (lifecycle: open → taken → submitted → completed)
const (
	TaskStatusOpen      = "open"
	TaskStatusTaken     = "taken"
	TaskStatusSubmitted = "submitted"
	TaskStatusCompleted = "completed"
)

// nextStatus defines the only allowed forward transition per status.
// A task never regresses; completed is terminal.
var nextStatus = map[string]string{
	TaskStatusOpen:      TaskStatusTaken,
	TaskStatusTaken:     TaskStatusSubmitted,
	TaskStatusSubmitted: TaskStatusCompleted,
}

// CanTransition reports whether moving from one status to the next is valid
func CanTransition(from, to string) bool {
	return nextStatus[from] == to
}

// PriorStatus returns the only status a task may move to the given status
// from, or "" when no transition leads there. The repository keys its
// conditional updates on this so the WHERE clauses and the transition table
// cannot drift apart.
func PriorStatus(to string) string {
	for from, next := range nextStatus {
		if next == to {
			return from
		}
	}
	return ""
}

// Task represents tasks table
type Task struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	PublicID       string     `gorm:"uniqueIndex;size:36;not null" json:"public_id"`
	Title          string     `gorm:"size:200;not null" json:"title"`
	Description    string     `gorm:"type:text;not null" json:"description"`
	Budget         int64      `gorm:"not null" json:"budget"`
	Deadline       *string    `gorm:"size:20" json:"deadline,omitempty"`
	Status         string     `gorm:"size:20;not null;default:'open';index" json:"status"`
	ClientID       uint       `gorm:"not null;index" json:"client_id"`
	FreelancerID   *uint      `gorm:"index" json:"freelancer_id"`
	SubmissionURL  *string    `gorm:"size:500" json:"submission_url"`
	SubmissionNote *string    `gorm:"type:text" json:"submission_note"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	TakenAt        *time.Time `gorm:"index" json:"taken_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Client     *User `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Freelancer *User `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
}

func (Task) TableName() string {
	return "tasks"
}

// IsAssigned reports whether a freelancer has accepted the task
func (t *Task) IsAssigned() bool {
	return t.FreelancerID != nil
}

// TaskResponse DTO
type TaskResponse struct {
	ID             uint       `json:"id"`
	PublicID       string     `json:"public_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Budget         int64      `json:"budget"`
	Deadline       *string    `json:"deadline,omitempty"`
	Status         string     `json:"status"`
	ClientID       uint       `json:"client_id"`
	ClientName     string     `json:"client_name,omitempty"`
	FreelancerID   *uint      `json:"freelancer_id"`
	FreelancerName string     `json:"freelancer_name,omitempty"`
	SubmissionURL  *string    `json:"submission_url"`
	SubmissionNote *string    `json:"submission_note"`
	CreatedAt      time.Time  `json:"created_at"`
	TakenAt        *time.Time `json:"taken_at"`
}

func (t *Task) ToResponse() *TaskResponse {
	resp := &TaskResponse{
		ID:             t.ID,
		PublicID:       t.PublicID,
		Title:          t.Title,
		Description:    t.Description,
		Budget:         t.Budget,
		Deadline:       t.Deadline,
		Status:         t.Status,
		ClientID:       t.ClientID,
		FreelancerID:   t.FreelancerID,
		SubmissionURL:  t.SubmissionURL,
		SubmissionNote: t.SubmissionNote,
		CreatedAt:      t.CreatedAt,
		TakenAt:        t.TakenAt,
	}

	if t.Client != nil {
		resp.ClientName = t.Client.Name
	}
	if t.Freelancer != nil {
		resp.FreelancerName = t.Freelancer.Name
	}

	return resp
}

// ============================================================
// Messages
// ============================================================

// SystemMessagePrefix marks engine-generated entries in the task chat log
const SystemMessagePrefix = "[SYSTEM] "

// Message represents messages table (append-only task chat log)
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaskID    uint      `gorm:"not null;index" json:"task_id"`
	SenderID  uint      `gorm:"not null" json:"sender_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Task   *Task `gorm:"foreignKey:TaskID" json:"-"`
	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}

// IsSystem reports whether the message was generated by the engine
func (m *Message) IsSystem() bool {
	return strings.HasPrefix(m.Content, SystemMessagePrefix)
}

// ============================================================
// Refresh Tokens
// ============================================================

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Schema Bootstrap
// ============================================================

// AutoMigrate creates missing tables and applies additive column migrations.
// Safe to run on every boot.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Task{},
		&Message{},
	); err != nil {
		return err
	}
	return migrateAddedColumns(db)
}

// migrateAddedColumns applies best-effort additive column migrations for
// installations created before these columns existed. "Duplicate column"
// errors are swallowed so the bootstrap stays idempotent.
func migrateAddedColumns(db *gorm.DB) error {
	stmts := []string{
		"ALTER TABLE users ADD COLUMN xp BIGINT DEFAULT 0",
		"ALTER TABLE tasks ADD COLUMN deadline VARCHAR(20)",
		"ALTER TABLE tasks ADD COLUMN submission_url VARCHAR(500)",
		"ALTER TABLE tasks ADD COLUMN submission_note TEXT",
	}

	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			if isDuplicateColumnError(err) {
				continue
			}
			return err
		}
	}
	return nil
}

// isDuplicateColumnError detects MySQL error 1060
func isDuplicateColumnError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Duplicate column")
}
