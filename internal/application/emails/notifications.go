package emails

import (
	"context"
	"sync"
	"time"

	"tidechain-backend/internal/application/transactions"
	"tidechain-backend/internal/domain"

	"github.com/rs/zerolog/log"
)

// PurchaseReceipt is the content of a purchase confirmation email.
type PurchaseReceipt struct {
	CertificateID  string
	ProjectName    string
	Credits        float64
	PricePerCredit float64
	TotalAmount    float64
	CertificateURL string
}

// UserLookup resolves the buyer's address for receipts.
type UserLookup interface {
	FindByID(ctx context.Context, id uint) (*domain.User, error)
}

// Notifications delivers emails in the background so a slow or failing mail
// provider never delays or fails the request that triggered it.
type Notifications struct {
	Sender  Sender
	Users   UserLookup
	BaseURL string // public API origin used for certificate links
	Timeout time.Duration

	wg sync.WaitGroup
}

// Welcome implements auth.Welcomer.
func (n *Notifications) Welcome(_ context.Context, name, email, role string) {
	n.dispatch("welcome", func(ctx context.Context) error {
		return n.Sender.SendWelcome(ctx, email, name, role)
	})
}

// PurchaseIssued implements transactions.Notifier.
func (n *Notifications) PurchaseIssued(_ context.Context, buyerID uint, r transactions.Receipt) {
	n.dispatch("purchase_receipt", func(ctx context.Context) error {
		u, err := n.Users.FindByID(ctx, buyerID)
		if err != nil {
			return err
		}
		return n.Sender.SendPurchaseReceipt(ctx, u.Email, u.Name, PurchaseReceipt{
			CertificateID:  r.CertificateID,
			ProjectName:    r.ProjectName,
			Credits:        r.CreditsPurchased,
			PricePerCredit: r.PricePerCredit,
			TotalAmount:    r.TotalAmount,
			CertificateURL: n.BaseURL + "/api/v1/transactions/" + r.TransactionID + "/certificate",
		})
	})
}

// Wait blocks until every dispatched email has been attempted.
func (n *Notifications) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}

func (n *Notifications) dispatch(kind string, send func(ctx context.Context) error) {
	if n == nil || n.Sender == nil {
		return
	}
	timeout := n.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := send(ctx); err != nil {
			log.Warn().Err(err).Str("email", kind).Msg("email delivery failed")
		}
	}()
}
