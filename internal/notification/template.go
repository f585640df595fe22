package notification

import (
	"fmt"
	"html/template"
	"math"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/MrJamesThe3rd/tally/internal/queue"
)

var transactionTemplate = template.Must(template.New("transaction").Parse(`<html>
<body>
  <p>Dear {{.FullName}},</p>
  <p>A {{.Type}} of ${{.Amount}} was recorded on your account.</p>
  <table>
    <tr><td>Transaction ID</td><td>{{.TransactionID}}</td></tr>
    <tr><td>Type</td><td>{{.Type}}</td></tr>
    <tr><td>Amount</td><td>${{.Amount}}</td></tr>
    <tr><td>Date</td><td>{{.Date}}</td></tr>
  </table>
  <p>If you do not recognize this transaction, please contact support.</p>
  <p>&copy; {{.Year}} Tally</p>
</body>
</html>`))

var (
	titleCaser   = cases.Title(language.English)
	amountFormat = message.NewPrinter(language.English)
)

// RenderTransaction builds the subject and HTML body for a settled
// transaction notification. The amount is shown in display units with
// thousands separators, always as a positive magnitude.
func RenderTransaction(ev queue.TransactionEvent) (subject, body string, err error) {
	amount := amountFormat.Sprintf("%.2f", math.Abs(ev.Amount))
	typeName := titleCaser.String(string(ev.Type))

	data := struct {
		FullName      string
		Type          string
		Amount        string
		TransactionID int64
		Date          string
		Year          int
	}{
		FullName:      ev.FullName,
		Type:          typeName,
		Amount:        amount,
		TransactionID: ev.TransactionID,
		Date:          ev.Date.Format(time.DateTime),
		Year:          time.Now().Year(),
	}

	var buf strings.Builder
	if err := transactionTemplate.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("rendering transaction template: %w", err)
	}

	subject = fmt.Sprintf("Transaction Notification: %s - $%s", typeName, amount)

	return subject, buf.String(), nil
}
