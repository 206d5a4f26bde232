package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/claimcheck/internal/model"
)

// Checker runs one claim check
type Checker interface {
	Check(ctx context.Context, claim string) (*model.Report, error)
}

// CheckJob is one claim to check
type CheckJob struct {
	Claim   string
	Checker Checker
}

// Execute runs the check
func (j *CheckJob) Execute(ctx context.Context) Result {
	report, err := j.Checker.Check(ctx, j.Claim)
	return &CheckResult{
		Claim:  j.Claim,
		Report: report,
		Error:  err,
	}
}

// CheckResult is the outcome of one claim in a batch. Report may be set
// even when Error is (e.g. no evidence found).
type CheckResult struct {
	Claim  string
	Report *model.Report
	Error  error
}

// GetError returns the error from the check
func (r *CheckResult) GetError() error {
	return r.Error
}

// BatchProcessor checks many claims with a bounded number of concurrent checks
type BatchProcessor struct {
	checker     Checker
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(checker Checker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
	}
}

// ProcessClaims checks every claim; results keep input order
func (b *BatchProcessor) ProcessClaims(ctx context.Context, claims []string) []*CheckResult {
	if len(claims) == 0 {
		return []*CheckResult{}
	}

	pool := NewPool(ctx, b.concurrency, 0)
	pool.Start()

	for _, claim := range claims {
		pool.Submit(&CheckJob{
			Claim:   claim,
			Checker: b.checker,
		})
	}

	results := pool.Wait()

	checkResults := make([]*CheckResult, len(claims))
	for i, claim := range claims {
		if i < len(results) && results[i] != nil {
			checkResults[i] = results[i].(*CheckResult)
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		checkResults[i] = &CheckResult{Claim: claim, Error: fmt.Errorf("not checked: %w", err)}
	}

	return checkResults
}

// ProcessFile reads claims from a file and checks them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*CheckResult, error) {
	claims, err := ReadLinesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read claims: %w", err)
	}

	return b.ProcessClaims(ctx, claims), nil
}

// ReadLinesFromFile reads one entry per line, skipping blanks, # comments
// and exact duplicates
func ReadLinesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var lines []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return lines, nil
}
