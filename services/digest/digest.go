package digestsvc

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/trezcool/facultypref/core"
	"github.com/trezcool/facultypref/core/selection"
	exportsvc "github.com/trezcool/facultypref/services/export"
)

const jobTimeout = 2 * time.Minute

// Service emails the selection summary to the admins.
type Service struct {
	selSvc     *selection.Service
	mailSvc    core.EmailService
	logger     core.Logger
	schedule   string
	recipients []string
	topN       int

	cron *cron.Cron
}

func NewService(conf *core.Config, selSvc *selection.Service, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{
		selSvc:     selSvc,
		mailSvc:    mailSvc,
		logger:     logger,
		schedule:   conf.Report.DigestSchedule,
		recipients: conf.Report.DigestRecipients,
		topN:       conf.Report.TopN,
	}
}

// Start schedules the digest; it is a no-op when no schedule or recipient is configured.
func (svc *Service) Start() error {
	if svc.schedule == "" || len(svc.recipients) == 0 {
		return nil
	}

	svc.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := svc.cron.AddFunc(svc.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if _, err := svc.Send(ctx, svc.recipients...); err != nil {
			svc.logger.Error(fmt.Sprintf("sending digest: %v", err), err)
		}
	})
	if err != nil {
		return errors.Wrapf(err, "scheduling digest %q", svc.schedule)
	}
	svc.cron.Start()
	svc.logger.Info(fmt.Sprintf("digest scheduled: %q to %s", svc.schedule, strings.Join(svc.recipients, ", ")))
	return nil
}

// Stop waits for a running digest to finish.
func (svc *Service) Stop() {
	if svc.cron != nil {
		<-svc.cron.Stop().Done()
	}
	svc.mailSvc.Wait()
}

// Send builds the digest and emails it to `to`, returning the number of recipients.
// Nothing is sent if any address is invalid.
func (svc *Service) Send(ctx context.Context, to ...string) (int, error) {
	recipients, invalid := core.ParseAddresses(to)
	if len(invalid) > 0 {
		msg := "invalid address: " + strings.Join(invalid, ", ")
		return 0, core.NewValidationError(errors.New(msg), core.FieldError{Field: "to", Error: msg})
	}
	if len(recipients) == 0 {
		return 0, core.NewValidationError(errors.New("no recipient"), core.FieldError{Field: "to", Error: "no recipient"})
	}

	msg, err := svc.Build(ctx)
	if err != nil {
		return 0, err
	}
	msg.To = recipients
	svc.mailSvc.SendMessages(msg)
	return len(recipients), nil
}

// Build renders the digest message: top faculty per subject in the body and the full summary attached as CSV.
func (svc *Service) Build(ctx context.Context) (*core.EmailMessage, error) {
	opts := selection.ReportOptions{TopN: svc.topN}
	report, err := svc.selSvc.Report(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "building report")
	}
	summary, err := svc.selSvc.Summary(ctx, selection.ReportOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "building summary")
	}

	msg := &core.EmailMessage{
		Subject:     "Faculty preferences digest - " + time.Now().UTC().Format("2006-01-02"),
		TextContent: FormatReport(report),
	}

	if len(summary) > 0 {
		var buf bytes.Buffer
		if err = exportsvc.WriteSummaryCSV(&buf, summary); err != nil {
			return nil, errors.Wrap(err, "exporting summary")
		}
		if err = msg.Attach(&buf, "faculty_summary.csv", "text/csv"); err != nil {
			return nil, errors.Wrap(err, "attaching summary")
		}
	}
	return msg, nil
}

// FormatReport renders the report as plain text, one block per subject.
func FormatReport(report selection.Report) string {
	if len(report) == 0 {
		return "No selections recorded yet.\n"
	}
	var b strings.Builder
	for _, subject := range report.Subjects() {
		fmt.Fprintf(&b, "%s\n", subject)
		for i, fc := range report[subject] {
			fmt.Fprintf(&b, "  %d. %s: %d\n", i+1, fc.Faculty, fc.Count)
		}
	}
	return b.String()
}
