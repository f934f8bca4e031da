package handler

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samedayramps/ramp-api/internal/domain"
	"github.com/samedayramps/ramp-api/internal/service"
	"go.uber.org/zap"
)

// SignatureHandler serves the manual signing fallback page. Customers land
// here when the e-signature vendor was unavailable at acceptance time.
type SignatureHandler struct {
	quoteService *service.QuoteService
	lifecycle    *service.QuoteLifecycleService
	logger       *zap.Logger
}

func NewSignatureHandler(
	quoteService *service.QuoteService,
	lifecycle *service.QuoteLifecycleService,
	logger *zap.Logger,
) *SignatureHandler {
	return &SignatureHandler{
		quoteService: quoteService,
		lifecycle:    lifecycle,
		logger:       logger,
	}
}

var signaturePageTmpl = template.Must(template.New("signaturePage").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Sign Rental Agreement</title>
  <style>
    body { font-family: sans-serif; max-width: 600px; margin: 40px auto; padding: 0 16px; color: #222; }
    table { border-collapse: collapse; width: 100%; margin: 16px 0; }
    td { padding: 6px 0; }
    td:last-child { text-align: right; }
    input[type=text] { width: 100%; padding: 8px; font-size: 16px; box-sizing: border-box; }
    button { margin-top: 12px; padding: 10px 24px; font-size: 16px; cursor: pointer; }
    .error { color: #b00020; }
  </style>
</head>
<body>
  <h1>Rental Agreement</h1>
  <p>Ramp rental for <strong>{{.CustomerName}}</strong> at {{.InstallAddress}}.</p>
  <table>
    <tr><td>Monthly rental</td><td>${{printf "%.2f" .MonthlyRentalRate}}</td></tr>
    <tr><td>Delivery and installation</td><td>${{printf "%.2f" .TotalUpfront}}</td></tr>
  </table>
  <p>By typing your full legal name below and submitting, you agree to the rental terms.</p>
  {{if .Error}}<p class="error">{{.Error}}</p>{{end}}
  <form method="POST" action="/manual-signature/{{.QuoteID}}">
    <label for="signatureName">Full legal name</label>
    <input type="text" id="signatureName" name="signatureName" required maxlength="200">
    <button type="submit">Sign Agreement</button>
  </form>
</body>
</html>
`))

var signatureDoneTmpl = template.Must(template.New("signatureDone").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Agreement Signed</title>
  <style>body { font-family: sans-serif; max-width: 600px; margin: 40px auto; padding: 0 16px; color: #222; }</style>
</head>
<body>
  <h1>Thank you, {{.SignatureName}}</h1>
  <p>Your rental agreement has been recorded. We'll be in touch to schedule your installation.</p>
</body>
</html>
`))

type signaturePageData struct {
	QuoteID           uuid.UUID
	CustomerName      string
	InstallAddress    string
	MonthlyRentalRate float64
	TotalUpfront      float64
	Error             string
}

// ShowForm renders the manual signing page for an accepted quote
func (s *SignatureHandler) ShowForm(w http.ResponseWriter, r *http.Request) {
	quote, ok := s.loadQuote(w, r)
	if !ok {
		return
	}

	s.renderForm(w, http.StatusOK, quote, "")
}

// Submit records the typed signature and shows a confirmation page
func (s *SignatureHandler) Submit(w http.ResponseWriter, r *http.Request) {
	quote, ok := s.loadQuote(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		s.renderForm(w, http.StatusBadRequest, quote, "Could not read the form submission.")
		return
	}

	signatureName := strings.TrimSpace(r.PostFormValue("signatureName"))
	if signatureName == "" {
		s.renderForm(w, http.StatusBadRequest, quote, "Please enter your full legal name.")
		return
	}

	if err := s.lifecycle.RecordManualSignature(r.Context(), quote.ID, signatureName); err != nil {
		s.logger.Warn("manual signature rejected",
			zap.String("quoteId", quote.ID.String()),
			zap.Error(err))
		s.renderForm(w, http.StatusConflict, quote, "This agreement cannot be signed right now. It may already be signed, or the quote is not yet accepted.")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = signatureDoneTmpl.Execute(w, struct{ SignatureName string }{signatureName})
}

func (s *SignatureHandler) loadQuote(w http.ResponseWriter, r *http.Request) (*domain.Quote, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "quoteId"))
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return nil, false
	}

	quote, err := s.quoteService.GetByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return nil, false
	}
	return quote, true
}

func (s *SignatureHandler) renderForm(w http.ResponseWriter, status int, quote *domain.Quote, errMsg string) {
	data := signaturePageData{
		QuoteID:           quote.ID,
		InstallAddress:    quote.InstallAddress,
		MonthlyRentalRate: quote.MonthlyRentalRate,
		TotalUpfront:      quote.TotalUpfront,
		Error:             errMsg,
	}
	if quote.Customer != nil {
		data.CustomerName = quote.Customer.FullName()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = signaturePageTmpl.Execute(w, data)
}
