// Package domain holds the portal entities and shared error types.
// JSON tags match the Supabase column names so rows decode directly.
package domain

import "time"

// ============================================================
// Contact
// ============================================================

type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Company   string    `json:"company"`
	CreatedAt time.Time `json:"created_at"`
}

// ContactInput is the payload accepted when creating a contact.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

// ============================================================
// Contract
// ============================================================

// Contract statuses as stored in the contracts table.
const (
	ContractActive    = "active"
	ContractPending   = "pending"
	ContractExpired   = "expired"
	ContractCancelled = "cancelled"
)

type Contract struct {
	ID              string    `json:"id"`
	Seq             int64     `json:"seq"`
	TaxID           string    `json:"tax_id"`
	ClientName      string    `json:"client_name"`
	SupplyPoint     string    `json:"supply_point"`
	Supplier        string    `json:"supplier"`
	Status          string    `json:"status"`
	SupplyStartDate string    `json:"supply_start_date"`
	Consumption     float64   `json:"consumption"`
	Commission      float64   `json:"commission"`
	SubUser         string    `json:"sub_user"`
	CreatedAt       time.Time `json:"created_at"`
}

type ContractInput struct {
	TaxID           string  `json:"tax_id"`
	ClientName      string  `json:"client_name"`
	SupplyPoint     string  `json:"supply_point"`
	Supplier        string  `json:"supplier"`
	Status          string  `json:"status"`
	SupplyStartDate string  `json:"supply_start_date"`
	Consumption     float64 `json:"consumption"`
	Commission      float64 `json:"commission"`
	SubUser         string  `json:"sub_user"`
}

// ============================================================
// Request (support request)
// ============================================================

const (
	RequestOpen            = "open"
	RequestClosed          = "closed"
	RequestInReview        = "in_review"
	RequestPendingSupplier = "pending_supplier"
)

type Request struct {
	ID          string    `json:"id"`
	Subject     string    `json:"subject"`
	ClientName  string    `json:"client_name"`
	ClientTaxID string    `json:"client_tax_id"`
	Status      string    `json:"status"`
	SubUser     string    `json:"sub_user"`
	Category    string    `json:"category"`
	Priority    string    `json:"priority"`
	Message     string    `json:"message"`
	Suppliers   []string  `json:"suppliers"`
	CreatedAt   time.Time `json:"created_at"`

	// TimeAgo is derived on read, never stored.
	TimeAgo string `json:"time_ago,omitempty"`
}

type RequestInput struct {
	Subject     string   `json:"subject"`
	ClientName  string   `json:"client_name"`
	ClientTaxID string   `json:"client_tax_id"`
	Category    string   `json:"category"`
	Priority    string   `json:"priority"`
	Message     string   `json:"message"`
	Suppliers   []string `json:"suppliers"`
	SubUser     string   `json:"sub_user"`
}

// ============================================================
// Occurrence (incident)
// ============================================================

const (
	OccurrencePending   = "pending"
	OccurrenceInReview  = "in_review"
	OccurrenceResolved  = "resolved"
	OccurrenceCancelled = "cancelled"
)

type Occurrence struct {
	ID           string    `json:"id"`
	Seq          int64     `json:"seq"`
	Code         string    `json:"code"`
	Subject      string    `json:"subject"`
	Description  string    `json:"description"`
	ClientName   string    `json:"client_name"`
	MeterPointID string    `json:"meter_point_id"`
	Status       string    `json:"status"`
	AuthorID     string    `json:"author_id"`
	CreatedAt    time.Time `json:"created_at"`
	TimeAgo      string    `json:"time_ago,omitempty"`
}

type OccurrenceInput struct {
	Subject      string `json:"subject"`
	Description  string `json:"description"`
	ClientName   string `json:"client_name"`
	MeterPointID string `json:"meter_point_id"`
	AuthorID     string `json:"author_id"`
}

// ============================================================
// PortalUser (app-level user, not the auth principal)
// ============================================================

const (
	UserActive   = "active"
	UserInactive = "inactive"
)

const (
	RoleBackoffice = "backoffice"
	RolePartner    = "partner"
	RoleCommercial = "commercial"
)

type PortalUser struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Company         string    `json:"company"`
	Status          string    `json:"status"`
	Role            string    `json:"role"`
	ParentPartnerID *string   `json:"parent_partner_id"`
	CreatedAt       time.Time `json:"created_at"`
}

type PortalUserInput struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	Company         string  `json:"company"`
	Status          string  `json:"status"`
	Role            string  `json:"role"`
	ParentPartnerID *string `json:"parent_partner_id"`
}

// ============================================================
// Simulation
// ============================================================

const (
	TariffIndexed = "indexed"
	TariffFixed   = "fixed"
	TariffBoth    = "both"
)

type Simulation struct {
	ID             string    `json:"id"`
	Seq            int64     `json:"seq"`
	Name           string    `json:"name"`
	TaxID          string    `json:"tax_id"`
	Tariff         string    `json:"tariff"`
	Priority       string    `json:"priority"`
	EstConsumption float64   `json:"est_consumption"`
	EstCommission  float64   `json:"est_commission"`
	Notes          string    `json:"notes"`
	InvoicePath    string    `json:"invoice_path"`
	Status         string    `json:"status"`
	OwnerID        string    `json:"owner_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type SimulationInput struct {
	Name           string  `json:"name"`
	TaxID          string  `json:"tax_id"`
	Tariff         string  `json:"tariff"`
	Priority       string  `json:"priority"`
	EstConsumption float64 `json:"est_consumption"`
	EstCommission  float64 `json:"est_commission"`
	Notes          string  `json:"notes"`
	OwnerID        string  `json:"owner_id"`
	InvoicePath    string  `json:"invoice_path"`
}

// ============================================================
// Chat
// ============================================================

// Sender kinds on a chat message.
const (
	SenderUser    = "user"
	SenderSupport = "support"
	SenderSystem  = "system"
)

type ChatMessage struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parent_id"`
	Sender    string    `json:"sender"`
	Body      string    `json:"body"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatDocument struct {
	ID          string    `json:"id"`
	ParentID    string    `json:"parent_id"`
	Name        string    `json:"name"`
	StoragePath string    `json:"storage_path"`
	SizeBytes   int64     `json:"size_bytes"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// ============================================================
// Drive / files
// ============================================================

// StoredFile is an entry in the shared file area ("Drive").
type StoredFile struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	SizeBytes int64     `json:"size_bytes"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ============================================================
// Auth
// ============================================================

// Principal is the authenticated account behind a session.
type Principal struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	PasswordHash string     `json:"password_hash,omitempty"`
	Status       string     `json:"status"`
	FailedLogins int        `json:"failed_logins"`
	LockedUntil  *time.Time `json:"locked_until"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

type RefreshToken struct {
	ID          string    `json:"id"`
	PrincipalID string    `json:"principal_id"`
	TokenHash   string    `json:"token_hash"`
	ExpiresAt   time.Time `json:"expires_at"`
	Revoked     bool      `json:"revoked"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ============================================================
// Notifications & dashboard
// ============================================================

// Notification is a transient message produced for the current session.
type Notification struct {
	Level     string    `json:"level"` // success | error | info
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// DashboardSummary aggregates per-entity counts for the home view.
type DashboardSummary struct {
	Contacts        int `json:"contacts"`
	Contracts       int `json:"contracts"`
	ActiveContracts int `json:"active_contracts"`
	OpenRequests    int `json:"open_requests"`
	Occurrences     int `json:"occurrences"`
	Simulations     int `json:"simulations"`
}

// ============================================================
// Health
// ============================================================

type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latency_ms"`
	LastChecked string `json:"last_checked"`
}

type HealthStatus struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
}
