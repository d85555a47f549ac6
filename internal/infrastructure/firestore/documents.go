package firestore

import (
	"fmt"
	"time"

	"finmgmt/internal/domain/payment"
	"finmgmt/internal/domain/transaction"
)

// isoLayout is the shape of JavaScript's Date.toISOString. The web client
// stores every date this way, so ordering and range filters on date fields
// compare strings.
const isoLayout = "2006-01-02T15:04:05.000Z"

const dateOnlyLayout = "2006-01-02"

func formatDate(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// dateBound formats t for a range filter. A UTC midnight becomes a bare
// date, which sorts after every value of the previous day in either shape
// and before every value of its own day.
func dateBound(t time.Time) string {
	t = t.UTC()
	if t.Equal(t.Truncate(24 * time.Hour)) {
		return t.Format(dateOnlyLayout)
	}
	return formatDate(t)
}

// parseDate accepts an ISO string, a bare date or a Firestore timestamp.
func parseDate(field string, v any) (time.Time, error) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return x, nil
	case string:
		if x == "" {
			return time.Time{}, nil
		}
		if t, err := time.Parse(time.RFC3339Nano, x); err == nil {
			return t, nil
		}
		if t, err := time.Parse(dateOnlyLayout, x); err == nil {
			return t, nil
		}
		return time.Time{}, fmt.Errorf("%s: unrecognised date %q", field, x)
	default:
		return time.Time{}, fmt.Errorf("%s: unexpected %T", field, v)
	}
}

// dateParser parses fields in turn and keeps the first error.
type dateParser struct {
	err error
}

func (p *dateParser) parse(field string, v any) time.Time {
	if p.err != nil {
		return time.Time{}
	}
	t, err := parseDate(field, v)
	p.err = err
	return t
}

// attachmentDoc shadows the attachment's upload time.
type attachmentDoc struct {
	transaction.Attachment
	UploadedAt any `firestore:"uploadedAt"`
}

func newAttachmentDocs(in []transaction.Attachment) []attachmentDoc {
	if in == nil {
		return nil
	}
	out := make([]attachmentDoc, len(in))
	for i, a := range in {
		out[i] = attachmentDoc{Attachment: a, UploadedAt: formatDate(a.UploadedAt)}
	}
	return out
}

func decodeAttachments(in []attachmentDoc) ([]transaction.Attachment, error) {
	if in == nil {
		return nil, nil
	}
	out := make([]transaction.Attachment, len(in))
	for i, d := range in {
		uploaded, err := parseDate("uploadedAt", d.UploadedAt)
		if err != nil {
			return nil, err
		}
		out[i] = d.Attachment
		out[i].UploadedAt = uploaded
	}
	return out, nil
}

// transactionDoc is the stored shape of a transaction. Its date fields
// shadow the embedded ones so either string or timestamp values decode.
type transactionDoc struct {
	transaction.Transaction
	DueDate     any             `firestore:"dueDate"`
	IssueDate   any             `firestore:"issueDate"`
	PaymentDate any             `firestore:"paymentDate,omitempty"`
	Attachments []attachmentDoc `firestore:"attachments,omitempty"`
	CreatedAt   any             `firestore:"createdAt"`
	UpdatedAt   any             `firestore:"updatedAt"`
}

func newTransactionDoc(t transaction.Transaction) transactionDoc {
	doc := transactionDoc{
		Transaction: t,
		DueDate:     formatDate(t.DueDate),
		IssueDate:   formatDate(t.IssueDate),
		Attachments: newAttachmentDocs(t.Attachments),
		CreatedAt:   formatDate(t.CreatedAt),
		UpdatedAt:   formatDate(t.UpdatedAt),
	}
	if t.PaymentDate != nil {
		doc.PaymentDate = formatDate(*t.PaymentDate)
	}
	return doc
}

func (d *transactionDoc) decode(id string) (*transaction.Transaction, error) {
	t := d.Transaction
	t.ID = id

	var dates dateParser
	t.DueDate = dates.parse("dueDate", d.DueDate)
	t.IssueDate = dates.parse("issueDate", d.IssueDate)
	t.CreatedAt = dates.parse("createdAt", d.CreatedAt)
	t.UpdatedAt = dates.parse("updatedAt", d.UpdatedAt)
	if paid := dates.parse("paymentDate", d.PaymentDate); !paid.IsZero() {
		t.PaymentDate = &paid
	} else {
		t.PaymentDate = nil
	}
	if dates.err != nil {
		return nil, fmt.Errorf("failed to decode transaction %s: %w", id, dates.err)
	}

	attachments, err := decodeAttachments(d.Attachments)
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction %s: %w", id, err)
	}
	t.Attachments = attachments

	return &t, nil
}

// paymentDoc is the stored shape of a payment.
type paymentDoc struct {
	payment.Record
	PaymentDate any             `firestore:"paymentDate"`
	Attachments []attachmentDoc `firestore:"attachments,omitempty"`
	CreatedAt   any             `firestore:"createdAt"`
}

func newPaymentDoc(p payment.Record) paymentDoc {
	return paymentDoc{
		Record:      p,
		PaymentDate: formatDate(p.PaymentDate),
		Attachments: newAttachmentDocs(p.Attachments),
		CreatedAt:   formatDate(p.CreatedAt),
	}
}

func (d *paymentDoc) decode(id string) (*payment.Record, error) {
	p := d.Record
	p.ID = id

	var dates dateParser
	p.PaymentDate = dates.parse("paymentDate", d.PaymentDate)
	p.CreatedAt = dates.parse("createdAt", d.CreatedAt)
	if dates.err != nil {
		return nil, fmt.Errorf("failed to decode payment %s: %w", id, dates.err)
	}

	attachments, err := decodeAttachments(d.Attachments)
	if err != nil {
		return nil, fmt.Errorf("failed to decode payment %s: %w", id, err)
	}
	p.Attachments = attachments

	return &p, nil
}
