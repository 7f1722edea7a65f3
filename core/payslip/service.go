package payslip

import (
	"bytes"
	"context"
	"net/mail"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/lonesystem/core"
	"github.com/trezcool/lonesystem/core/employee"
	"github.com/trezcool/lonesystem/core/raise"
	"github.com/trezcool/lonesystem/core/tax"
)

var (
	ErrInvalidPeriod = errors.New("Ogiltigt år eller månad")
	ErrNoEmail       = errors.New("Anställd saknar e-postadress")

	renderPDFFunc = RenderPDF // mockable
)

type (
	Service struct {
		empRepo   employee.Repository
		raiseRepo raise.Repository
		calc      tax.Calculator
		mailer    core.EmailService
	}

	emailData struct {
		Namn      string
		Period    string
		Bruttolon string
		Nettolon  string
	}
)

func NewService(empRepo employee.Repository, raiseRepo raise.Repository, calc tax.Calculator, mailer core.EmailService) *Service {
	return &Service{empRepo: empRepo, raiseRepo: raiseRepo, calc: calc, mailer: mailer}
}

// Build computes the payslip of an employee for the given month (zero values default to the current month),
// based on the salary in effect at the end of that month.
func (svc *Service) Build(ctx context.Context, employeeID, year, month int) (Payslip, error) {
	now := core.NowFunc()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	if !core.ValidYearMonth(year, month) {
		return Payslip{}, core.NewValidationError(ErrInvalidPeriod)
	}

	emp, err := svc.empRepo.GetEmployeeByID(ctx, employeeID)
	if err != nil {
		return Payslip{}, err
	}
	raises, err := svc.raiseRepo.QueryRaises(ctx, raise.QueryFilter{EmployeeID: emp.ID})
	if err != nil {
		return Payslip{}, errors.Wrap(err, "querying salary raises")
	}

	_, end := core.MonthRange(year, month)
	m, err := svc.calc.Monthly(raise.SalaryAt(emp, raises, end.Add(-1)))
	if err != nil {
		return Payslip{}, errors.Wrap(err, "computing tax")
	}

	return Payslip{
		Employee:         emp,
		Year:             year,
		Month:            month,
		Tax:              m,
		municipalPercent: svc.calc.MunicipalPercent().String(),
		statePercent:     svc.calc.StatePercent().String(),
		stateThreshold:   strings.TrimSuffix(core.FormatSEK(svc.calc.StateThreshold), ",00"),
	}, nil
}

// Render builds the payslip and renders it as PDF.
func (svc *Service) Render(ctx context.Context, employeeID, year, month int) (Payslip, []byte, error) {
	p, err := svc.Build(ctx, employeeID, year, month)
	if err != nil {
		return Payslip{}, nil, err
	}
	content, err := renderPDFFunc(p)
	if err != nil {
		return Payslip{}, nil, err
	}
	return p, content, nil
}

// Send e-mails the payslip PDF to the employee.
func (svc *Service) Send(ctx context.Context, employeeID, year, month int) (Payslip, error) {
	p, err := svc.Build(ctx, employeeID, year, month)
	if err != nil {
		return Payslip{}, err
	}
	if !p.Employee.Epost.Valid || p.Employee.Epost.String == "" {
		return Payslip{}, core.NewValidationError(ErrNoEmail, core.FieldError{Field: "epost", Error: ErrNoEmail.Error()})
	}
	content, err := renderPDFFunc(p)
	if err != nil {
		return Payslip{}, err
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: p.Employee.Namn, Address: p.Employee.Epost.String}},
		Subject:      "Lönespecifikation " + p.Period(),
		TemplateName: "payslip",
		TemplateData: emailData{
			Namn:      p.Employee.Namn,
			Period:    p.Period(),
			Bruttolon: core.FormatSEK(p.Tax.Manadslon),
			Nettolon:  core.FormatSEK(p.Tax.Nettolon),
		},
	}
	if err = msg.Attach(bytes.NewReader(content), p.Filename(), "application/pdf"); err != nil {
		return Payslip{}, errors.Wrap(err, "attaching payslip")
	}
	svc.mailer.SendMessages(msg)
	return p, nil
}
