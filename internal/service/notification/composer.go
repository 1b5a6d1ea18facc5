package notification

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/notification"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/report"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/money"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/period"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/phone"
)

const DefaultShareLinkBaseURL = "https://wa.me/"

// Templates maps each notice variant to an approved template id.
type Templates struct {
	Salary    string
	Deduction string
}

func (t Templates) For(v report.NoticeVariant) string {
	if v == report.VariantDeduction {
		return t.Deduction
	}
	return t.Salary
}

// Composer builds recipients, template variables and share links. It has no
// side effects.
type Composer struct {
	templates     Templates
	countryPrefix string
	shareLinkBase string
}

func NewComposer(templates Templates, countryPrefix, shareLinkBase string) *Composer {
	if countryPrefix == "" {
		countryPrefix = phone.DefaultCountryPrefix
	}
	if shareLinkBase == "" {
		shareLinkBase = DefaultShareLinkBaseURL
	}
	if !strings.HasSuffix(shareLinkBase, "/") {
		shareLinkBase += "/"
	}
	return &Composer{templates: templates, countryPrefix: countryPrefix, shareLinkBase: shareLinkBase}
}

// Recipient normalizes the employee's phone number.
func (c *Composer) Recipient(r payroll.SalaryRecord) (string, error) {
	n := phone.Normalize(r.PhoneNumber, c.countryPrefix)
	if phone.Digits(n) == "" {
		return "", notification.ErrMissingPhone
	}
	return n, nil
}

// Variables are the template content variables for the variant.
func (c *Composer) Variables(r payroll.SalaryRecord, variant report.NoticeVariant) map[string]string {
	p := period.New(r.Month, r.Year)
	if variant == report.VariantDeduction {
		return map[string]string{
			"period":           p.Label(),
			"deduction_amount": money.Format(r.Deductions),
		}
	}
	return map[string]string{
		"period": p.Label(),
		"net":    money.Format(r.NetSalary),
	}
}

// Text is the pre-filled share-link message.
func (c *Composer) Text(r payroll.SalaryRecord, variant report.NoticeVariant, artifactURL string) string {
	p := period.New(r.Month, r.Year)
	var b strings.Builder
	if name := strings.TrimSpace(r.EmployeeName); name != "" {
		fmt.Fprintf(&b, "مرحباً %s،\n", name)
	}
	if variant == report.VariantDeduction {
		fmt.Fprintf(&b, "تم تسجيل خصومات على راتب %s بإجمالي %s ريال.", p.Label(), money.Format(r.Deductions))
	} else {
		fmt.Fprintf(&b, "تم إصدار راتب %s بصافي %s ريال.", p.Label(), money.Format(r.NetSalary))
	}
	if artifactURL != "" {
		fmt.Fprintf(&b, "\nالتفاصيل: %s", artifactURL)
	}
	return b.String()
}

// ShareLink is base + recipient digits + ?text=<message>. Spaces are encoded
// as %20, not "+", since some clients show a literal plus.
func (c *Composer) ShareLink(recipient, text string) string {
	q := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return c.shareLinkBase + phone.Digits(recipient) + "?text=" + q
}

func (c *Composer) Intent(r payroll.SalaryRecord, variant report.NoticeVariant, recipient, artifactURL string, now time.Time) notification.DispatchIntent {
	return notification.DispatchIntent{
		SalaryID:    r.ID,
		EmployeeID:  r.EmployeeID,
		Variant:     variant,
		Recipient:   recipient,
		TemplateID:  c.templates.For(variant),
		Variables:   c.Variables(r, variant),
		ArtifactURL: artifactURL,
		CreatedAt:   now,
	}
}

// ArtifactPath is where a notice PDF is stored, relative to the storage root.
func ArtifactPath(r payroll.SalaryRecord, variant report.NoticeVariant) string {
	return fmt.Sprintf("payroll/%04d/%02d/%s-%s.pdf", r.Year, r.Month, r.EmployeeID, variant)
}
