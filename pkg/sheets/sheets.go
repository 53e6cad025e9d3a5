package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"igcaption/pkg/config"
	errs "igcaption/pkg/errors"
	"igcaption/pkg/logger"
	"igcaption/pkg/models"
)

const (
	worksheetRows    = 1000
	worksheetColumns = 20
	timestampLayout  = "2006-01-02 15:04:05"

	// Sheets API write quota is 60 requests per minute per user
	requestsPerMinute = 60
	requestBurst      = 5
)

// Header is the first row written to every worksheet
var Header = []interface{}{"Post URL", "Content", "Success", "Error", "Timestamp"}

// Writer persists a batch to a worksheet and returns the document URL
type Writer interface {
	Write(ctx context.Context, batch models.ScrapeBatch, worksheet string) (string, error)
}

// Sink writes scrape results to a Google Sheets document
type Sink struct {
	sheets  *gsheets.Service
	drive   *drive.Service
	cfg     config.SheetsConfig
	logger  logger.Logger
	now     func() time.Time
	limiter *rate.Limiter

	mu            sync.Mutex
	spreadsheetID string
}

// New creates a sink authenticated with the service account in
// cfg.CredentialsFile. Extra client options replace the credentials, which
// tests use to point the sink at a local server.
func New(ctx context.Context, cfg config.SheetsConfig, log logger.Logger, opts ...option.ClientOption) (*Sink, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if len(opts) == 0 {
		if cfg.CredentialsFile == "" {
			return nil, errs.New(errs.ErrorTypeConfig, "sheets credentials file is not configured")
		}
		opts = []option.ClientOption{
			option.WithCredentialsFile(cfg.CredentialsFile),
			option.WithScopes(gsheets.SpreadsheetsScope, drive.DriveFileScope),
		}
	}

	sheetsSvc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &Sink{
		sheets:        sheetsSvc,
		drive:         driveSvc,
		cfg:           cfg,
		logger:        log.WithField("component", "sheets"),
		now:           time.Now,
		limiter:       rate.NewLimiter(rate.Every(time.Minute/requestsPerMinute), requestBurst),
		spreadsheetID: cfg.SpreadsheetID,
	}, nil
}

// Write appends the header and one row per result to worksheet, creating the
// worksheet (and the document, when no id is configured) as needed. An empty
// worksheet name gets a timestamped default.
func (s *Sink) Write(ctx context.Context, batch models.ScrapeBatch, worksheet string) (string, error) {
	now := s.now()
	if worksheet == "" {
		worksheet = DefaultWorksheetName(now)
	}

	doc, err := s.document(ctx)
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeSink, err, "open spreadsheet")
	}

	if !hasWorksheet(doc, worksheet) {
		if err := s.addWorksheet(ctx, doc.SpreadsheetId, worksheet); err != nil {
			return "", errs.Wrap(errs.ErrorTypeSink, err, "add worksheet "+worksheet)
		}
	}

	if err := s.throttle(ctx); err != nil {
		return "", errs.Wrap(errs.ErrorTypeSink, err, "append rows")
	}
	values := &gsheets.ValueRange{Values: BuildRows(batch, now)}
	_, err = s.sheets.Spreadsheets.Values.
		Append(doc.SpreadsheetId, quoteRange(worksheet)+"!A1", values).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeSink, err, "append rows")
	}

	s.logger.WithFields(map[string]interface{}{
		"worksheet": worksheet,
		"rows":      len(batch),
	}).Debug("Rows appended")
	return documentURL(doc), nil
}

// document opens the configured spreadsheet or creates one on first use
func (s *Sink) document(ctx context.Context) (*gsheets.Spreadsheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.throttle(ctx); err != nil {
		return nil, err
	}
	if s.spreadsheetID != "" {
		return s.sheets.Spreadsheets.Get(s.spreadsheetID).
			Fields("spreadsheetId", "spreadsheetUrl", "sheets.properties.title").
			Context(ctx).
			Do()
	}

	title := s.cfg.SpreadsheetTitle
	if title == "" {
		title = "Instagram Scraping Results"
	}
	doc, err := s.sheets.Spreadsheets.Create(&gsheets.Spreadsheet{
		Properties: &gsheets.SpreadsheetProperties{Title: title},
	}).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	s.spreadsheetID = doc.SpreadsheetId
	s.logger.WithField("spreadsheet_id", doc.SpreadsheetId).Info("Created spreadsheet")

	if s.cfg.ShareWith != "" {
		if err := s.throttle(ctx); err != nil {
			return nil, err
		}
		if err := s.share(ctx, doc.SpreadsheetId, s.cfg.ShareWith); err != nil {
			// the document is still usable by the service account
			s.logger.WithError(err).WithField("email", s.cfg.ShareWith).Warn("Failed to share spreadsheet")
		}
	}
	return doc, nil
}

func (s *Sink) addWorksheet(ctx context.Context, spreadsheetID, name string) error {
	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			AddSheet: &gsheets.AddSheetRequest{
				Properties: &gsheets.SheetProperties{
					Title: name,
					GridProperties: &gsheets.GridProperties{
						RowCount:    worksheetRows,
						ColumnCount: worksheetColumns,
					},
				},
			},
		}},
	}
	if err := s.throttle(ctx); err != nil {
		return err
	}
	_, err := s.sheets.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	return err
}

// throttle keeps API calls under the per-user quota
func (s *Sink) throttle(ctx context.Context) error {
	return s.limiter.Wait(ctx)
}

func (s *Sink) share(ctx context.Context, fileID, email string) error {
	_, err := s.drive.Permissions.Create(fileID, &drive.Permission{
		Type:         "user",
		Role:         "writer",
		EmailAddress: email,
	}).SendNotificationEmail(false).Context(ctx).Do()
	return err
}

// SpreadsheetID returns the document in use, empty until one is opened or created
func (s *Sink) SpreadsheetID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spreadsheetID
}

// DefaultWorksheetName names a worksheet after the time of the write
func DefaultWorksheetName(now time.Time) string {
	return "Scrape_" + now.Format("20060102_150405")
}

// BuildRows renders the header followed by one row per result. Every row
// carries the write time, not the scrape time.
func BuildRows(batch models.ScrapeBatch, now time.Time) [][]interface{} {
	stamp := now.Format(timestampLayout)
	rows := make([][]interface{}, 0, len(batch)+1)
	rows = append(rows, Header)
	for _, r := range batch {
		rows = append(rows, []interface{}{
			r.URL,
			r.ContentOrEmpty(),
			formatBool(r.Success),
			r.ErrorOrEmpty(),
			stamp,
		})
	}
	return rows
}

// SaveOrWarn writes batch and returns the document URL, or "" when the write
// fails. Spreadsheet failures never abort a run.
func SaveOrWarn(ctx context.Context, w Writer, batch models.ScrapeBatch, worksheet string, log logger.Logger) string {
	if w == nil {
		return ""
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	url, err := w.Write(ctx, batch, worksheet)
	logger.LogSinkWrite(log, "sheets", url, len(batch), err)
	if err != nil {
		return ""
	}
	return url
}

func hasWorksheet(doc *gsheets.Spreadsheet, name string) bool {
	for _, sheet := range doc.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == name {
			return true
		}
	}
	return false
}

// quoteRange quotes a sheet name for A1 notation
func quoteRange(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func documentURL(doc *gsheets.Spreadsheet) string {
	if doc.SpreadsheetUrl != "" {
		return doc.SpreadsheetUrl
	}
	return "https://docs.google.com/spreadsheets/d/" + doc.SpreadsheetId
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
