package report01

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// Renderer превращает строки отчёта в байты выгрузки.
type Renderer interface {
	Render(w io.Writer, rows []Report01Dto) error
	ContentType() string
	Ext() string
}

const dateLayout = "2006-01-02"

var csvHeader = []string{
	"card_no", "name", "id_no", "birthday", "gender",
	"worker_user", "last_referral_date", "referral_count", "drug_use_count",
}

// CSVRenderer пишет CSV с BOM, чтобы Excel открывал UTF-8 без вопросов.
type CSVRenderer struct{}

func (CSVRenderer) ContentType() string { return "text/csv; charset=utf-8" }
func (CSVRenderer) Ext() string         { return "csv" }

func (CSVRenderer) Render(w io.Writer, rows []Report01Dto) error {
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.CardNo, r.Name, r.IDNo, day(r.Birthday), r.Gender,
			r.WorkerUser, day(r.LastReferralDate),
			strconv.Itoa(r.ReferralCount), strconv.FormatInt(r.DrugUseCount, 10),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
