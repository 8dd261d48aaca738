package identity

import (
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"net/url"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// SMTPConfig carries the delivery settings for verification mail.
type SMTPConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	From            string
	FromName        string
	Subject         string
	VerificationURL string
}

var verificationBody = template.Must(template.New("verification").Parse(`<style>
    a {
        background-color: #105bc7;
        padding: 5px;
        width: fit-content;
        border-radius: 8px;
        text-decoration: none;
        font-family: 'Arial', sans-serif, serif;
        color: #fff;
    }
</style>

<h1>Activate your account</h1>
<p>Use the button below to confirm this mailbox and activate your account.</p>
<div>
    <a href="{{.Link}}">Activate account</a>
</div>
`))

// SMTPNotifier delivers verification messages over SMTP with STARTTLS when
// the server offers it, or implicit TLS on port 465.
type SMTPNotifier struct {
	cfg    SMTPConfig
	logger Logger
}

var _ Notifier = (*SMTPNotifier)(nil)

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	if cfg.Subject == "" {
		cfg.Subject = "Activate your account"
	}
	return &SMTPNotifier{
		cfg:    cfg,
		logger: defLogger{},
	}
}

func (n *SMTPNotifier) WithLogger(logger Logger) *SMTPNotifier {
	if logger != nil {
		n.logger = logger
	}
	return n
}

// SendVerification renders the activation link into the mail body and hands
// it to the configured server. Failures are reported, never retried here.
func (n *SMTPNotifier) SendVerification(ctx context.Context, email, token string) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during verification delivery")
	default:
	}

	if n.cfg.Host == "" {
		return goerrors.New("smtp host not configured", goerrors.CategoryOperation).
			WithTextCode(TextCodeDeliveryFailure)
	}

	link := fmt.Sprintf("%s?token=%s", n.cfg.VerificationURL, url.QueryEscape(token))

	var body strings.Builder
	if err := verificationBody.Execute(&body, map[string]any{"Link": link}); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to render verification body")
	}

	msg := n.buildMessage(email, body.String())
	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)

	if err := n.send(addr, auth, email, msg); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to deliver verification message").
			WithTextCode(TextCodeDeliveryFailure)
	}

	n.logger.Debug("verification message delivered to %s", email)

	return nil
}

func (n *SMTPNotifier) buildMessage(to, body string) string {
	from := n.cfg.From
	if from == "" {
		from = n.cfg.Username
	}

	fromHeader := from
	if n.cfg.FromName != "" {
		fromHeader = fmt.Sprintf("%s <%s>", n.cfg.FromName, from)
	}

	var msg strings.Builder
	msg.WriteString("From: " + fromHeader + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + n.cfg.Subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	return msg.String()
}

func (n *SMTPNotifier) send(addr string, auth smtp.Auth, to, msg string) error {
	from := n.cfg.From
	if from == "" {
		from = n.cfg.Username
	}

	if n.cfg.Port == 465 {
		return n.sendTLS(addr, auth, from, to, msg)
	}

	c, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		tlsConfig := &tls.Config{ServerName: n.cfg.Host}
		if err := c.StartTLS(tlsConfig); err != nil {
			return err
		}
	}

	return n.transmit(c, auth, from, to, msg)
}

func (n *SMTPNotifier) sendTLS(addr string, auth smtp.Auth, from, to, msg string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: n.cfg.Host})
	if err != nil {
		return err
	}

	c, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	return n.transmit(c, auth, from, to, msg)
}

func (n *SMTPNotifier) transmit(c *smtp.Client, auth smtp.Auth, from, to, msg string) error {
	if n.cfg.Username != "" {
		if err := c.Auth(auth); err != nil {
			return err
		}
	}

	if err := c.Mail(from); err != nil {
		return err
	}

	if err := c.Rcpt(to); err != nil {
		return err
	}

	wc, err := c.Data()
	if err != nil {
		return err
	}

	if _, err := wc.Write([]byte(msg)); err != nil {
		return err
	}

	if err := wc.Close(); err != nil {
		return err
	}

	return c.Quit()
}
