package costs

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
)

// Cost metric queried from Cost Explorer.
const metric = "BlendedCost"

// Date layout expected by the Cost Explorer API.
const dateLayout = "2006-01-02"

// Narrow view of the Cost Explorer API used by the explorer.
type API interface {
	GetCostAndUsage(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error)
}

// AWS connection settings for the explorer.
type Config struct {
	Region    string // Region for the Cost Explorer endpoint.
	AccessKey string // Static access key ID. Empty uses the default credential chain.
	SecretKey string // Static secret access key.
}

// Queries month-to-date spend from AWS Cost Explorer.
type Explorer struct {
	api API
}

// Creates an explorer from the AWS configuration in the environment.
//
// When a static access key is configured it takes precedence over the
// default credential chain.
func NewExplorer(ctx context.Context, cfg Config) (*Explorer, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExplorer, err)
	}

	return &Explorer{api: costexplorer.NewFromConfig(awsCfg)}, nil
}

// Creates an explorer backed by the given API. Used by tests.
func NewExplorerWithAPI(api API) *Explorer {
	return &Explorer{api: api}
}

// Returns the blended cost accrued so far this month, in USD.
func (e *Explorer) MonthToDate(ctx context.Context, now time.Time) (float64, error) {
	start, end := monthWindow(now)

	out, err := e.api.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(start.Format(dateLayout)),
			End:   aws.String(end.Format(dateLayout)),
		},
		Granularity: cetypes.GranularityMonthly,
		Metrics:     []string{metric},
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExplorer, err)
	}

	if len(out.ResultsByTime) == 0 {
		return 0, fmt.Errorf("%w: empty result set", ErrNoResults)
	}

	total, ok := out.ResultsByTime[0].Total[metric]
	if !ok || total.Amount == nil {
		return 0, fmt.Errorf("%w: no %s metric in result", ErrNoResults, metric)
	}

	amount, err := strconv.ParseFloat(*total.Amount, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad amount %q", ErrNoResults, *total.Amount)
	}

	return amount, nil
}

// Returns the month-to-date query window for the given time.
//
// The window runs from the first of the month to today. On the first of the
// month the end is extended by one day, because Cost Explorer rejects empty
// intervals.
func monthWindow(now time.Time) (start, end time.Time) {
	now = now.UTC()

	start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if !start.Before(end) {
		end = end.AddDate(0, 0, 1)
	}

	return start, end
}
