package postgres

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"etwin/config"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newBufferedGormLogger(debug bool) (*bytes.Buffer, logger.Interface) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cfg := &config.Config{}
	cfg.Env.Debug = debug

	return &buf, newGormSlogLogger(base, cfg)
}

func TestGormSlogLogger_DropsBoundValues(t *testing.T) {
	_, l := newBufferedGormLogger(true)

	filter, ok := l.(gorm.ParamsFilter)
	if !assert.True(t, ok) {
		return
	}

	sql, params := filter.ParamsFilter(context.Background(), "UPDATE users SET password = ?", "$2a$10$secret")
	assert.Equal(t, "UPDATE users SET password = ?", sql)
	assert.Empty(t, params)
}

func TestGormSlogLogger_Trace(t *testing.T) {
	query := func() (string, int64) { return "SELECT 1", 1 }

	tests := []struct {
		name    string
		debug   bool
		begin   time.Time
		err     error
		want    string
		wantNot string
	}{
		{name: "failure", err: gorm.ErrInvalidData, want: "level=ERROR msg=\"GORM query failed\""},
		{name: "record not found is quiet", err: gorm.ErrRecordNotFound, wantNot: "GORM"},
		{name: "record not found in debug", debug: true, err: gorm.ErrRecordNotFound, want: "level=DEBUG msg=\"GORM query rejected\""},
		{name: "unique violation is expected", err: &pgconn.PgError{Code: pgUniqueViolation}, wantNot: "GORM"},
		{name: "slow query", begin: time.Now().Add(-time.Second), want: "level=WARN msg=\"GORM slow query\""},
		{name: "regular query hidden", wantNot: "GORM"},
		{name: "regular query in debug", debug: true, want: "msg=\"GORM query\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, l := newBufferedGormLogger(tt.debug)

			begin := tt.begin
			if begin.IsZero() {
				begin = time.Now()
			}
			l.Trace(context.Background(), begin, query, tt.err)

			if tt.want != "" {
				assert.Contains(t, buf.String(), tt.want)
				assert.Contains(t, buf.String(), "component=gorm")
			}
			if tt.wantNot != "" {
				assert.NotContains(t, buf.String(), tt.wantNot)
			}
		})
	}
}
