package entities

import (
	"time"
)

type UserRole string

const (
	UserRoleMember UserRole = "Member"
	UserRoleAdmin  UserRole = "Admin"
)

type MembershipType string

const (
	MembershipStudent MembershipType = "Student"
	MembershipFaculty MembershipType = "Faculty"
	MembershipPublic  MembershipType = "Public"
)

// MembershipTypes lists the categories offered on the registration form.
var MembershipTypes = []MembershipType{MembershipStudent, MembershipFaculty, MembershipPublic}

// ValidMembershipType reports whether the value is one of the allowed
// membership categories offered on the registration form.
func ValidMembershipType(m MembershipType) bool {
	switch m {
	case MembershipStudent, MembershipFaculty, MembershipPublic:
		return true
	}
	return false
}

type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	FullName       string         `gorm:"size:100" json:"full_name"`
	Username       string         `gorm:"uniqueIndex;size:15" json:"username"`
	Email          string         `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash   string         `gorm:"size:100" json:"-"`
	Role           UserRole       `gorm:"size:10;default:'Member'" json:"role"`
	MembershipType MembershipType `gorm:"size:10" json:"membership_type"`
	ProfilePicture string         `gorm:"size:255" json:"profile_picture,omitempty"`

	FailedLoginCount int        `json:"-"`
	LockedUntil      *time.Time `json:"-"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Availability string

const (
	AvailabilityAvailable Availability = "Available"
	AvailabilityBorrowed  Availability = "Borrowed"
)

type Book struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Title        string       `gorm:"index;size:512" json:"title"`
	Author       string       `gorm:"index;size:256" json:"author"`
	Genre        string       `gorm:"index;size:100" json:"genre"`
	CoverImage   string       `gorm:"size:255" json:"cover_image,omitempty"`
	Availability Availability `gorm:"index;size:10;default:'Available'" json:"availability"`
	CreatedAt    time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "Pending"
	RequestStatusApproved RequestStatus = "Approved"
	RequestStatusRejected RequestStatus = "Rejected"
)

// BorrowRequest links a member and a book through the borrow workflow.
// A request is created Pending, decided by an admin (Approved or Rejected),
// and may be deleted by its owner while still Pending.
type BorrowRequest struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	UserID    uint          `gorm:"index" json:"user_id"`
	BookID    uint          `gorm:"index" json:"book_id"`
	Duration  int           `json:"duration"` // days
	Message   string        `gorm:"type:text" json:"message,omitempty"`
	Status    RequestStatus `gorm:"index;size:10;default:'Pending'" json:"status"`
	User      User          `gorm:"foreignKey:UserID" json:"-"`
	Book      Book          `gorm:"foreignKey:BookID" json:"-"`
	CreatedAt time.Time     `gorm:"index" json:"created_at"`
}

type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	BookID    uint      `gorm:"index" json:"book_id"`
	Rating    int       `json:"rating"`
	Body      string    `gorm:"type:text" json:"body"`
	Image     string    `gorm:"size:255" json:"image,omitempty"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Book      Book      `gorm:"foreignKey:BookID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// ReadingListEntry is a plain bookmark with no workflow attached.
type ReadingListEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_reading_list_user_book" json:"user_id"`
	BookID    uint      `gorm:"uniqueIndex:idx_reading_list_user_book" json:"book_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Book      Book      `gorm:"foreignKey:BookID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

func (Book) TableName() string {
	return "books"
}

func (BorrowRequest) TableName() string {
	return "borrow_requests"
}

func (Review) TableName() string {
	return "reviews"
}

func (ReadingListEntry) TableName() string {
	return "reading_list"
}
