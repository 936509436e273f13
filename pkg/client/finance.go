package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"garmentFactory/domain"

	"golang.org/x/sync/errgroup"
)

type Section string

const (
	SectionKPIs    Section = "kpis"
	SectionMonthly Section = "monthly"
	SectionSummary Section = "summary"
)

func yearQuery(year int) url.Values {
	if year <= 0 {
		return nil
	}
	return url.Values{"year": {strconv.Itoa(year)}}
}

func (c *Client) GetKPIs(ctx context.Context) (domain.FinanceKPIs, error) {
	var out struct {
		KPIs domain.FinanceKPIs `json:"kpis"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/finance/kpis", nil, nil, &out); err != nil {
		return domain.FinanceKPIs{}, err
	}
	return out.KPIs, nil
}

func (c *Client) GetSummary(ctx context.Context) (domain.FinanceSummary, error) {
	var out struct {
		Summary domain.FinanceSummary `json:"summary"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/finance/summary", nil, nil, &out); err != nil {
		return domain.FinanceSummary{}, err
	}
	return out.Summary, nil
}

// GetMonthly fetches the twelve monthly buckets of year, the current year when year <= 0.
func (c *Client) GetMonthly(ctx context.Context, year int) (domain.FinanceMonthly, error) {
	var out struct {
		Monthly domain.FinanceMonthly `json:"monthly"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/finance/monthly", yearQuery(year), nil, &out); err != nil {
		return domain.FinanceMonthly{}, err
	}
	return out.Monthly, nil
}

// DownloadReport returns the PDF finance report.
func (c *Client) DownloadReport(ctx context.Context, year int) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/finance/report.pdf", yearQuery(year), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/pdf")
	return c.send(req)
}

// Dashboard holds the three finance sections. Each is filled or carries its own error.
type Dashboard struct {
	KPIs    domain.FinanceKPIs
	Monthly domain.FinanceMonthly
	Summary domain.FinanceSummary

	KPIsErr    error
	MonthlyErr error
	SummaryErr error
}

// Err returns the first section error, if any.
func (d Dashboard) Err() error {
	for _, err := range []error{d.KPIsErr, d.MonthlyErr, d.SummaryErr} {
		if err != nil {
			return err
		}
	}
	return nil
}

// FetchDashboard loads KPIs, monthly figures and the summary concurrently. A failing or
// slow section does not hold back the others: onSection, when set, runs as soon as each
// section finishes. Calls to onSection are serialized.
func (c *Client) FetchDashboard(ctx context.Context, year int, onSection func(Section, error)) Dashboard {
	var (
		d  Dashboard
		mu sync.Mutex
		g  errgroup.Group
	)

	done := func(section Section, err error) {
		if onSection == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		onSection(section, err)
	}

	g.Go(func() error {
		d.KPIs, d.KPIsErr = c.GetKPIs(ctx)
		done(SectionKPIs, d.KPIsErr)
		return nil
	})
	g.Go(func() error {
		d.Monthly, d.MonthlyErr = c.GetMonthly(ctx, year)
		done(SectionMonthly, d.MonthlyErr)
		return nil
	})
	g.Go(func() error {
		d.Summary, d.SummaryErr = c.GetSummary(ctx)
		done(SectionSummary, d.SummaryErr)
		return nil
	})

	_ = g.Wait()
	return d
}
