// Package web holds the adapters for the publicly hosted predictor
// services. Each adapter wraps one site's submission form and result
// page behind the predictor interfaces; which facets an adapter
// implements depends on how the site works (job queue vs. synchronous
// response, login wall, availability probe).
package web

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/loschmidt/BenchStab/pkg/predictor"
)

const (
	ddgunBase   = "https://folding.biofold.org/ddgun"
	ddgunSubmit = ddgunBase + "/ddgun-seq.cgi"
)

var (
	ddgunJobRe     = regexp.MustCompile(`ddgun-result\.cgi\?jobid=([0-9a-f-]+)`)
	ddgunScoreRe   = regexp.MustCompile(`<td class="ddg">\s*(-?\d+(?:\.\d+)?)\s*</td>`)
	ddgunQueuedRe  = regexp.MustCompile(`(?i)job queued`)
	ddgunRunningRe = regexp.MustCompile(`(?i)job running`)
)

// DDGun is the sequence-based DDGun adapter. Submissions go through a
// job queue, so it implements both the submit and poll facets.
type DDGun struct {
	client *predictor.Client
	base   string
	submit string
}

// NewDDGun builds the adapter. An empty baseURL selects the public site.
func NewDDGun(client *predictor.Client, baseURL string) *DDGun {
	if client == nil {
		client = predictor.NewClient(30 * time.Second)
	}
	base, submit := ddgunBase, ddgunSubmit
	if baseURL != "" {
		base = baseURL
		submit = baseURL + "/ddgun-seq.cgi"
	}
	return &DDGun{client: client, base: base, submit: submit}
}

func (d *DDGun) Name() string { return "ddgun" }

func (d *DDGun) InputType() predictor.InputType { return predictor.InputSequence }

func (d *DDGun) JobBased() bool { return true }

// Ping checks the site front page before any batch starts.
func (d *DDGun) Ping(ctx context.Context) error {
	return d.client.Head(ctx, d.base)
}

// Submit posts the sequence form and extracts the result-page URL of the
// queued job from the response.
func (d *DDGun) Submit(ctx context.Context, job *predictor.Job) (*predictor.Submission, error) {
	form := url.Values{
		"sequence": {job.Record.Sequence},
		"mutation": {job.Record.SequenceMutation().String()},
		"email":    {""},
	}
	body, err := d.client.PostForm(ctx, d.submit, form)
	if err != nil {
		return nil, err
	}
	m := ddgunJobRe.FindStringSubmatch(body)
	if m == nil {
		return nil, &predictor.ResponseParseError{
			Op:  "submit",
			Err: fmt.Errorf("no job id in response"),
		}
	}
	return predictor.NewSubmission(d.base + "/ddgun-result.cgi?jobid=" + m[1]), nil
}

// Poll fetches the result page once. A still-queued job reports
// ErrStillRunning and a job the site is actively working on reports
// ErrProcessing, so the scheduler keeps waiting either way.
func (d *DDGun) Poll(ctx context.Context, sub *predictor.Submission) (*predictor.Result, error) {
	body, err := d.client.Get(ctx, sub.PollURL)
	if err != nil {
		return nil, err
	}
	if ddgunRunningRe.MatchString(body) {
		return nil, predictor.ErrProcessing
	}
	if ddgunQueuedRe.MatchString(body) {
		return nil, predictor.ErrStillRunning
	}
	m := ddgunScoreRe.FindStringSubmatch(body)
	if m == nil {
		return nil, &predictor.ResponseParseError{
			Op:  "poll",
			Err: fmt.Errorf("result page has no score"),
		}
	}
	ddg, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil, &predictor.ResponseParseError{Op: "poll", Err: err}
	}
	return &predictor.Result{DDG: ddg, URL: sub.PollURL, Message: "finished"}, nil
}
