package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

const (
	statementsPath = "/api/2.0/sql/statements"
	waitTimeout    = "30s"

	stateSucceeded = "SUCCEEDED"
)

// StatementError reports a statement that did not succeed.
type StatementError struct {
	Statement  string
	StatusCode int
	State      string
	Message    string
}

func (e *StatementError) Error() string {
	if e.State != "" {
		return fmt.Sprintf("statement %q ended in state %s: %s", e.Statement, e.State, e.Message)
	}
	return fmt.Sprintf("statement %q failed with HTTP %d: %s", e.Statement, e.StatusCode, e.Message)
}

type statementRequest struct {
	Statement     string `json:"statement"`
	WarehouseID   string `json:"warehouse_id"`
	WaitTimeout   string `json:"wait_timeout"`
	// OnWaitTimeout is CANCEL so a statement does not outlive wait_timeout.
	OnWaitTimeout string `json:"on_wait_timeout"`
}

type statementResponse struct {
	StatementID string `json:"statement_id"`
	Status      struct {
		State string `json:"state"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error,omitempty"`
	} `json:"status"`
	Result *struct {
		DataArray [][]string `json:"data_array"`
	} `json:"result,omitempty"`
}

type errorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// RemoteSession runs statements against a SQL warehouse over the statement execution API.
type RemoteSession struct {
	client      *resty.Client
	warehouseID string
}

// NewRemote creates a session against host, authenticated with token.
func NewRemote(host, token, warehouseID string) *RemoteSession {
	client := resty.New().
		SetBaseURL(strings.TrimRight(host, "/")).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json")
	return &RemoteSession{client: client, warehouseID: warehouseID}
}

// Client exposes the underlying HTTP client.
func (s *RemoteSession) Client() *resty.Client {
	return s.client
}

// Table returns the named table.
func (s *RemoteSession) Table(name string) Table {
	return &remoteTable{session: s, name: name}
}

// Close releases idle connections.
func (s *RemoteSession) Close() error {
	s.client.GetClient().CloseIdleConnections()
	return nil
}

func (s *RemoteSession) execute(ctx context.Context, statement string) (*statementResponse, error) {
	result := &statementResponse{}
	apiErr := &errorResponse{}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(statementRequest{
			Statement:     statement,
			WarehouseID:   s.warehouseID,
			WaitTimeout:   waitTimeout,
			OnWaitTimeout: "CANCEL",
		}).
		SetResult(result).
		SetError(apiErr).
		Post(statementsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to execute statement: %w", err)
	}
	if resp.IsError() {
		msg := apiErr.Message
		if msg == "" {
			msg = resp.String()
		}
		return nil, &StatementError{Statement: statement, StatusCode: resp.StatusCode(), Message: msg}
	}
	if result.Status.State != stateSucceeded {
		se := &StatementError{Statement: statement, StatusCode: resp.StatusCode(), State: result.Status.State}
		if result.Status.Error != nil {
			se.Message = result.Status.Error.Message
		}
		return nil, se
	}
	return result, nil
}

type remoteTable struct {
	session *RemoteSession
	name    string
}

// Count runs SELECT COUNT(*) against the table.
func (t *remoteTable) Count(ctx context.Context) (int64, error) {
	if err := validateTableName(t.name); err != nil {
		return 0, err
	}

	statement := "SELECT COUNT(*) FROM " + t.name
	result, err := t.session.execute(ctx, statement)
	if err != nil {
		return 0, err
	}
	if result.Result == nil || len(result.Result.DataArray) == 0 || len(result.Result.DataArray[0]) == 0 {
		return 0, fmt.Errorf("statement %q returned no rows", statement)
	}

	count, err := strconv.ParseInt(result.Result.DataArray[0][0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("statement %q returned a non-integer count: %w", statement, err)
	}
	return count, nil
}
