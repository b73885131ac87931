// internal/models/requests.go
package models

// Status values live in the domain language of the back office (Italian),
// matching what the admin dashboard displays verbatim.

// RepairStatus is the lifecycle of a repair request.
type RepairStatus string

const (
	RepairStatusNew            RepairStatus = "Nuova"
	RepairStatusEvaluating     RepairStatus = "In Valutazione"
	RepairStatusQuoteSent      RepairStatus = "Preventivo Inviato"
	RepairStatusQuoteApproved  RepairStatus = "Approvata dal Cliente"
	RepairStatusQuoteRejected  RepairStatus = "Rifiutata dal Cliente"
	RepairStatusInRepair       RepairStatus = "In Riparazione"
	RepairStatusRepairDone     RepairStatus = "Riparazione Completata"
	RepairStatusAwaitingPay    RepairStatus = "In Attesa di Pagamento"
	RepairStatusPaid           RepairStatus = "Pagamento Ricevuto"
	RepairStatusReadyForPickup RepairStatus = "Pronta per Ritiro/Spedizione"
	RepairStatusClosed         RepairStatus = "Conclusa"
	RepairStatusNotRepairable  RepairStatus = "Non Riparabile"
	RepairStatusCancelled      RepairStatus = "Cancellata"
)

// PersonalizedStatus is the lifecycle of a personalized watch request.
type PersonalizedStatus string

const (
	PersonalizedStatusNew           PersonalizedStatus = "Nuova"
	PersonalizedStatusWorking       PersonalizedStatus = "In Lavorazione"
	PersonalizedStatusProposalsSent PersonalizedStatus = "Proposte Inviate"
	PersonalizedStatusAwaitingReply PersonalizedStatus = "In Attesa di Risposta"
	PersonalizedStatusCompleted     PersonalizedStatus = "Completata"
	PersonalizedStatusCancelled     PersonalizedStatus = "Cancellata"
)

// SellStatus is the lifecycle of a sell proposal.
type SellStatus string

const (
	SellStatusNew        SellStatus = "Nuova"
	SellStatusEvaluating SellStatus = "In Valutazione"
	SellStatusOfferSent  SellStatus = "Offerta Inviata"
	SellStatusAccepted   SellStatus = "Accettata"
	SellStatusRejected   SellStatus = "Rifiutata"
	SellStatusCompleted  SellStatus = "Completata"
	SellStatusCancelled  SellStatus = "Cancellata"
)

// RepairStatusDomain enumerates every admissible repair status, in pipeline order.
func RepairStatusDomain() []RepairStatus {
	return []RepairStatus{
		RepairStatusNew, RepairStatusEvaluating, RepairStatusQuoteSent,
		RepairStatusQuoteApproved, RepairStatusQuoteRejected, RepairStatusInRepair,
		RepairStatusRepairDone, RepairStatusAwaitingPay, RepairStatusPaid,
		RepairStatusReadyForPickup, RepairStatusClosed, RepairStatusNotRepairable,
		RepairStatusCancelled,
	}
}

func PersonalizedStatusDomain() []PersonalizedStatus {
	return []PersonalizedStatus{
		PersonalizedStatusNew, PersonalizedStatusWorking, PersonalizedStatusProposalsSent,
		PersonalizedStatusAwaitingReply, PersonalizedStatusCompleted, PersonalizedStatusCancelled,
	}
}

func SellStatusDomain() []SellStatus {
	return []SellStatus{
		SellStatusNew, SellStatusEvaluating, SellStatusOfferSent,
		SellStatusAccepted, SellStatusRejected, SellStatusCompleted, SellStatusCancelled,
	}
}

// ValidStatusFor reports whether raw is an admissible status for the kind.
func ValidStatusFor(kind FormKind, raw string) bool {
	switch kind {
	case KindRepairForm:
		for _, s := range RepairStatusDomain() {
			if string(s) == raw {
				return true
			}
		}
	case KindRequestForm:
		for _, s := range PersonalizedStatusDomain() {
			if string(s) == raw {
				return true
			}
		}
	case KindSellForm:
		for _, s := range SellStatusDomain() {
			if string(s) == raw {
				return true
			}
		}
	}
	return false
}

// NewStatusFor returns the status a freshly persisted record of the kind starts in.
func NewStatusFor(kind FormKind) string {
	return "Nuova"
}

// RepairRequest is a persisted repair intake record.
type RepairRequest struct {
	ID               string       `json:"id"`
	UserID           string       `json:"userId"`
	WatchBrand       string       `json:"watchBrand"`
	WatchModel       string       `json:"watchModel"`
	SerialNumber     string       `json:"serialNumber,omitempty"`
	IssueDescription string       `json:"issueDescription"`
	ServiceType      string       `json:"serviceType"`
	Name             string       `json:"name"`
	Email            string       `json:"email"`
	Phone            string       `json:"phone,omitempty"`
	Status           RepairStatus `json:"status"`
	AdminNotes       string       `json:"adminNotes,omitempty"`
	CreatedAt        string       `json:"createdAt"`
	UpdatedAt        string       `json:"updatedAt"`
}

// PersonalizedRequest is a persisted personalized-watch intake record.
type PersonalizedRequest struct {
	ID              string             `json:"id"`
	UserID          string             `json:"userId"`
	WatchType       string             `json:"watchType"`
	BrandPreference string             `json:"brandPreference,omitempty"`
	BudgetMin       float64            `json:"budgetMin"`
	BudgetMax       float64            `json:"budgetMax"`
	Notes           string             `json:"notes,omitempty"`
	Name            string             `json:"name"`
	Email           string             `json:"email"`
	Status          PersonalizedStatus `json:"status"`
	AdminNotes      string             `json:"adminNotes,omitempty"`
	CreatedAt       string             `json:"createdAt"`
	UpdatedAt       string             `json:"updatedAt"`
}

// SellRequest is a persisted sell-proposal intake record.
type SellRequest struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	WatchBrand   string     `json:"watchBrand"`
	WatchModel   string     `json:"watchModel"`
	Year         int        `json:"year,omitempty"`
	Condition    string     `json:"condition"`
	DesiredPrice float64    `json:"desiredPrice"`
	HasBox       bool       `json:"hasBox"`
	HasPapers    bool       `json:"hasPapers"`
	Description  string     `json:"description,omitempty"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	Status       SellStatus `json:"status"`
	AdminNotes   string     `json:"adminNotes,omitempty"`
	CreatedAt    string     `json:"createdAt"`
	UpdatedAt    string     `json:"updatedAt"`
}

// SubmissionSummary is the kind-agnostic projection the back office lists.
type SubmissionSummary struct {
	ID        string   `json:"id"`
	Kind      FormKind `json:"kind"`
	Status    string   `json:"status"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Headline  string   `json:"headline"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
}
