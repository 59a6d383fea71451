// Package smtp implements spec.md §4.5's SMTP Prober: a single-connection
// client-side state machine that drives a remote MX through the
// envelope dialogue (HELO, MAIL FROM, RCPT TO target, RCPT TO random) to
// test recipient acceptance and catch-all behavior, all under one
// whole-dialogue deadline.
//
// Grounded on mailvetter's internal/lookup/smtp.go: the same
// textproto.NewConn + tp.ReadResponse(code) idiom, the same
// semaphore-bounded connection limiting, and the same banner/HELO/MAIL/
// RCPT command sequence — generalized from the teacher's two-connection,
// two-call probe shape into the single-dialogue, single-connection state
// machine spec.md §4.5 specifies (one connection, two RCPT TOs, then
// QUIT), and from the teacher's bespoke bool+error return into the
// spec's explicit {yes,no,unknown} ternary outcome.
package smtp

import (
	"context"
	"fmt"
	"net"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mailvetter/internal/engine/models"
	"mailvetter/internal/proxy"
)

// Semaphore bounds concurrent outbound SMTP connections so a bulk run
// never opens enough sockets at once to get the host IP blocklisted.
var Semaphore = make(chan struct{}, 15)

const defaultTimeout = 5 * time.Second

// Result is the prober's verdict for one address.
type Result struct {
	Deliverable   models.SMTPDeliverable
	IsCatchAll    bool
	Banner        string
	FinalResponse string
	TLSSupported  bool
	Reason        string
}

// Prober drives one SMTP dialogue per Probe call; it never reuses
// connections across validations, per spec.md §4.5.
type Prober struct {
	FromDomain string
	Timeout    time.Duration
}

func New(fromDomain string, timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if fromDomain == "" {
		fromDomain = "mta1.mailvetter.com"
	}
	return &Prober{FromDomain: fromDomain, Timeout: timeout}
}

// Probe implements the state machine of spec.md §4.5 against mxHost for
// email@domain. When proxyURL is non-nil and the process-wide
// proxy.Manager is enabled, the connection routes through that proxy
// instead of dialing direct. timeout and fromDomain let a single call
// override the Prober's configured defaults (spec.md §6's per-request
// smtpTimeout/smtpFromDomain options); pass 0 and "" to use the Prober's
// own Timeout/FromDomain.
func (p *Prober) Probe(ctx context.Context, email, domain, mxHost string, proxyURL *url.URL, timeout time.Duration, fromDomain string) Result {
	if timeout <= 0 {
		timeout = p.Timeout
	}
	if fromDomain == "" {
		fromDomain = p.FromDomain
	}

	select {
	case Semaphore <- struct{}{}:
	case <-ctx.Done():
		return Result{Deliverable: models.SMTPUnknown, Reason: "context canceled waiting for a probe slot"}
	}
	defer func() { <-Semaphore }()

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := proxy.DialContext(dialCtx, "tcp4", mxHost+":25", timeout, proxyURL)
	if err != nil {
		return Result{Deliverable: models.SMTPNo, Reason: fmt.Sprintf("connect failed: %v", err)}
	}
	defer conn.Close()

	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	conn.SetDeadline(deadline)

	tp := textproto.NewConn(conn)
	defer tp.Close()

	// WAIT_BANNER
	_, banner, err := tp.ReadResponse(220)
	if err != nil {
		if isTimeout(err) {
			return Result{Deliverable: models.SMTPNo, Reason: "timeout"}
		}
		return Result{Deliverable: models.SMTPNo, Reason: fmt.Sprintf("banner rejected: %v", err)}
	}
	tlsHinted := strings.Contains(strings.ToLower(banner), "tls") || strings.Contains(strings.ToLower(banner), "starttls")

	// WAIT_HELO
	if _, err := tp.Cmd("HELO %s", fromDomain); err != nil {
		return Result{Deliverable: models.SMTPNo, Banner: banner, Reason: fmt.Sprintf("socket error on HELO: %v", err)}
	}
	if _, _, err := tp.ReadResponse(250); err != nil {
		if isTimeout(err) {
			return Result{Deliverable: models.SMTPNo, Banner: banner, Reason: "timeout"}
		}
		return Result{Deliverable: models.SMTPNo, Banner: banner, Reason: fmt.Sprintf("HELO rejected: %v", err)}
	}

	// WAIT_MAIL
	if _, err := tp.Cmd("MAIL FROM:<probe@%s>", fromDomain); err != nil {
		return Result{Deliverable: models.SMTPNo, Banner: banner, Reason: fmt.Sprintf("socket error on MAIL FROM: %v", err)}
	}
	if _, _, err := tp.ReadResponse(250); err != nil {
		if isTimeout(err) {
			return Result{Deliverable: models.SMTPNo, Banner: banner, TLSSupported: tlsHinted, Reason: "timeout"}
		}
		return Result{Deliverable: models.SMTPNo, Banner: banner, TLSSupported: tlsHinted, Reason: fmt.Sprintf("MAIL FROM rejected: %v", err)}
	}

	// WAIT_RCPT (target)
	if _, err := tp.Cmd("RCPT TO:<%s>", email); err != nil {
		return Result{Deliverable: models.SMTPNo, Banner: banner, TLSSupported: tlsHinted, Reason: fmt.Sprintf("socket error on RCPT TO: %v", err)}
	}
	code, msg, err := tp.ReadResponse(0)
	if err != nil {
		if isTimeout(err) {
			return Result{Deliverable: models.SMTPNo, Banner: banner, TLSSupported: tlsHinted, Reason: "timeout"}
		}
		return Result{Deliverable: models.SMTPNo, Banner: banner, TLSSupported: tlsHinted, Reason: fmt.Sprintf("socket error: %v", err)}
	}

	switch {
	case code >= 200 && code < 300:
		// WAIT_CATCHALL: probe a random address at the same domain.
		isCatchAll := p.probeCatchAll(tp, domain)
		tp.Cmd("QUIT")
		return Result{
			Deliverable:   models.SMTPYes,
			IsCatchAll:    isCatchAll,
			Banner:        banner,
			FinalResponse: formatResponse(code, msg),
			TLSSupported:  tlsHinted,
		}
	case code >= 500 && code < 600:
		tp.Cmd("QUIT")
		return Result{
			Deliverable:   models.SMTPNo,
			Banner:        banner,
			FinalResponse: formatResponse(code, msg),
			TLSSupported:  tlsHinted,
			Reason:        "recipient rejected",
		}
	default:
		tp.Cmd("QUIT")
		return Result{
			Deliverable:   models.SMTPUnknown,
			Banner:        banner,
			FinalResponse: formatResponse(code, msg),
			TLSSupported:  tlsHinted,
			Reason:        "server response was not a definitive accept or reject",
		}
	}
}

// probeCatchAll sends a second RCPT TO for a nonexistent mailbox on the
// same domain. A 250 there means the server accepts any recipient.
func (p *Prober) probeCatchAll(tp *textproto.Conn, domain string) bool {
	randomLocal := "nonexistent-" + strconv.FormatInt(time.Now().UnixMilli(), 10)
	if _, err := tp.Cmd("RCPT TO:<%s@%s>", randomLocal, domain); err != nil {
		return false
	}
	code, _, err := tp.ReadResponse(0)
	if err != nil {
		return false
	}
	return code >= 200 && code < 300
}

func formatResponse(code int, msg string) string {
	return strconv.Itoa(code) + " " + msg
}

func isTimeout(err error) bool {
	var netErr net.Error
	if ne, ok := err.(net.Error); ok {
		netErr = ne
		return netErr.Timeout()
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}
