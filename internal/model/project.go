package model

import "time"

type ProjectStatus string

const (
	ProjectOpen      ProjectStatus = "OPEN"      // gig accepting applications
	ProjectRequested ProjectStatus = "REQUESTED" // direct request awaiting the creative's answer
	ProjectAccepted  ProjectStatus = "ACCEPTED"  // work order created
	ProjectDeclined  ProjectStatus = "DECLINED"
	ProjectClosed    ProjectStatus = "CLOSED"
)

// Project is the originating gig posting or direct request a work order is
// created from. A direct request carries the creative it was sent to; an open
// gig collects applications instead.
type Project struct {
	ID                  int64         `json:"id"`
	ClientID            int64         `json:"client_id"`
	Title               string        `json:"title"`
	Description         string        `json:"description,omitempty"`
	RateCents           int64         `json:"rate_cents"`
	BudgetType          BudgetType    `json:"budget_type"`
	Status              ProjectStatus `json:"status"`
	RequestedCreativeID *int64        `json:"requested_creative_id,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationAccepted ApplicationStatus = "ACCEPTED"
	ApplicationDeclined ApplicationStatus = "DECLINED"
)

// Application is a creative's bid on an open gig.
type Application struct {
	ID                int64             `json:"id"`
	ProjectID         int64             `json:"project_id"`
	CreativeID        int64             `json:"creative_id"`
	CoverLetter       string            `json:"cover_letter,omitempty"`
	ProposedRateCents int64             `json:"proposed_rate_cents"`
	Status            ApplicationStatus `json:"status"`
	CreatedAt         time.Time         `json:"created_at"`
}
