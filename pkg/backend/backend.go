// Package backend talks to the external authentication service of the branch network.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/ioutil"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/config"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/metrics"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/types"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/session"
)

const (
	loginAPI    = "/api/Auth/Login"
	validateAPI = "/api/Auth/ValidateSession"
	logoutAPI   = "/api/Auth/Logout"
)

// ErrMalformed marks a reply that could not be understood.
var ErrMalformed = errors.New("malformed authentication service reply")

// IsTimeout reports whether err came from a request deadline or client timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

// loginReply is the body of the backend login endpoint.
type loginReply struct {
	Status  string    `json:"status"`
	Message string    `json:"message"`
	Detail  string    `json:"detail"`
	Data    loginData `json:"data"`
}

type loginData struct {
	UserID     string             `json:"userId"`
	UserName   string             `json:"userName"`
	Domain     string             `json:"domain"`
	BranchCode string             `json:"branchCode"`
	BranchName string             `json:"branchName"`
	Role       string             `json:"role"`
	Level      string             `json:"level"`
	Department string             `json:"department"`
	Profile    string             `json:"profile"`
	SessionID  string             `json:"sessionId"`
	UserMenu   []session.MenuItem `json:"userMenu"`
}

// LoginResult is the outcome of a credential exchange. User is set only on success.
type LoginResult struct {
	Success  bool
	Message  string
	Detail   string
	User     *session.User
	UserMenu []session.MenuItem
}

// ValidateResult is the backend verdict on a session token.
type ValidateResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

type validateReply struct {
	Valid   *bool  `json:"valid"`
	Message string `json:"message"`
}

func success(status int) bool {
	return status >= 200 && status < 300
}

func unexpectedStatus(op string, status int) error {
	return errors.Errorf("%s: authentication service returned %d", op, status)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// DefaultClient builds a client from the current ExtServer configuration.
func DefaultClient() *Client {
	return NewClient(config.ExtServerSetting.AuthBaseURL, &http.Client{Timeout: config.ExtServerSetting.LoginTimeout})
}

// Login exchanges credentials for a session. Rejected credentials are reported in the
// result; only transport faults and malformed replies are returned as errors.
func (cli *Client) Login(ctx context.Context, userID, password string) (*LoginResult, error) {
	if userID == "" || password == "" {
		return &LoginResult{Message: "user id and password are required"}, nil
	}

	var reply loginReply
	status, err := cli.post(ctx, "login", loginAPI, map[string]string{"userid": userID, "password": password}, &reply)
	if err != nil {
		return nil, err
	}
	if !success(status) && status != http.StatusUnauthorized {
		return nil, unexpectedStatus("login", status)
	}
	if !strings.EqualFold(reply.Status, types.BackendSuccess) {
		msg := reply.Message
		if msg == "" {
			msg = fmt.Sprintf("login rejected (%d)", status)
		}
		return &LoginResult{Message: msg, Detail: reply.Detail}, nil
	}

	d := reply.Data
	user := &session.User{
		UserID:     d.UserID,
		UserName:   d.UserName,
		Domain:     d.Domain,
		BranchCode: d.BranchCode,
		BranchName: d.BranchName,
		Role:       d.Role,
		Level:      d.Level,
		Department: d.Department,
		Profile:    d.Profile,
		Token:      d.SessionID,
	}
	if !user.Complete() {
		return nil, errors.Wrap(ErrMalformed, "login reply lacks required profile fields")
	}
	return &LoginResult{
		Success:  true,
		Message:  reply.Message,
		User:     user,
		UserMenu: d.UserMenu,
	}, nil
}

// Validate asks whether token is still the live session of userID. Only a 401, or a 2xx
// reply carrying an explicit "valid" field, is a verdict; anything else is an error.
func (cli *Client) Validate(ctx context.Context, userID, token string) (*ValidateResult, error) {
	var reply validateReply
	status, err := cli.post(ctx, "validate", validateAPI, map[string]string{"userid": userID, "sessionId": token}, &reply)
	if status == http.StatusUnauthorized {
		if reply.Message == "" {
			reply.Message = "session rejected by authentication service"
		}
		return &ValidateResult{Valid: false, Message: reply.Message}, nil
	}
	if err != nil {
		return nil, err
	}
	if !success(status) {
		return nil, unexpectedStatus("validate", status)
	}
	if reply.Valid == nil {
		return nil, errors.Wrap(ErrMalformed, "validate reply lacks the valid field")
	}
	return &ValidateResult{Valid: *reply.Valid, Message: reply.Message}, nil
}

// Logout tells the backend to drop token.
func (cli *Client) Logout(ctx context.Context, userID, token string) error {
	_, err := cli.post(ctx, "logout", logoutAPI, map[string]string{"userid": userID, "sessionId": token}, nil)
	return err
}

// post sends body as JSON and decodes the reply into out. 5xx replies are errors; other
// statuses are decoded and returned for the caller to interpret.
func (cli *Client) post(ctx context.Context, op, api string, body interface{}, out interface{}) (int, error) {
	if cli.baseURL == "" {
		return 0, errors.New("authentication service url is not configured")
	}
	start := time.Now()
	defer func() {
		metrics.Default().BackendLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	payload, err := json.Marshal(body)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, cli.baseURL+api, bytes.NewReader(payload))
	if err != nil {
		return 0, errors.WithStack(err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")

	resp, err := cli.httpClient.Do(request)
	if err != nil {
		return 0, errors.Wrapf(err, "%s request", op)
	}
	defer resp.Body.Close()

	raw, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, errors.Wrapf(err, "%s read", op)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return resp.StatusCode, unexpectedStatus(op, resp.StatusCode)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		if out != nil {
			return resp.StatusCode, errors.Wrapf(ErrMalformed, "%s: empty body", op)
		}
		return resp.StatusCode, nil
	}
	if err = json.Unmarshal(raw, out); err != nil {
		return resp.StatusCode, errors.Wrapf(ErrMalformed, "%s: %v", op, err)
	}
	return resp.StatusCode, nil
}
