package migrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shreyank-the-integrator/user-account-creation/config"
	"github.com/shreyank-the-integrator/user-account-creation/internal/request"
	"github.com/shreyank-the-integrator/user-account-creation/internal/retry"
	"github.com/shreyank-the-integrator/user-account-creation/model"
)

// defaultTeamEndpoints maps every supported region to its provisioning
// endpoint. Entries can be overridden per region through the team_api
// endpoints table in the configuration.
var defaultTeamEndpoints = map[model.Region]string{
	model.RegionCA: "https://team-api.ca.useraccounts.io/api/v1/teams",
	model.RegionUS: "https://team-api.us.useraccounts.io/api/v1/teams",
	model.RegionAU: "https://team-api.au.useraccounts.io/api/v1/teams",
	model.RegionEU: "https://team-api.eu.useraccounts.io/api/v1/teams",
	model.RegionUK: "https://team-api.uk.useraccounts.io/api/v1/teams",
}

// teamRequest is the wire payload of one provisioning call.
type teamRequest struct {
	OwnerID                  string `json:"owner_id"`
	TeamName                 string `json:"team_name"`
	AdminSessionReviewToggle bool   `json:"admin_session_review_toggle"`
	AllowToAddTeamMembers    bool   `json:"allow_to_add_team_members"`
	ChargeFutureMembers      bool   `json:"charge_future_members"`
	IsPilot                  bool   `json:"is_pilot"`
	IsStripeManaged          bool   `json:"is_stripe_managed"`
	SubscribedPlan           string `json:"subscribed_plan"`
}

// teamCallError carries the status and body of a failed provisioning call so
// the retry predicate can tell transient failures from permanent ones.
type teamCallError struct {
	StatusCode int
	Body       string
	Message    string
}

func (e *teamCallError) Error() string {
	return fmt.Sprintf("team api returned %d: %s", e.StatusCode, e.Message)
}

// TeamClient provisions teams through the region's HTTP endpoint.
type TeamClient struct {
	mu        sync.RWMutex
	region    model.Region
	endpoints map[model.Region]string
	token     string
	client    *http.Client
	retry     retry.Policy
}

// NewTeamClient builds a TeamClient from the process configuration,
// defaulting to the US region until SetRegion selects another one.
func NewTeamClient(conf *config.Configuration) *TeamClient {
	endpoints := make(map[model.Region]string, len(defaultTeamEndpoints))
	for region, url := range defaultTeamEndpoints {
		endpoints[region] = url
	}
	for code, url := range conf.TeamAPI.Endpoints {
		region := model.Region(code)
		if !region.Valid() {
			logrus.Warnf("ignoring endpoint override for unknown region %q", code)
			continue
		}
		endpoints[region] = url
	}

	return &TeamClient{
		region:    model.RegionUS,
		endpoints: endpoints,
		token:     conf.TeamAPI.Token,
		client: &http.Client{
			Timeout: time.Duration(conf.TeamAPI.TimeoutSeconds) * time.Second,
		},
		retry: retry.Policy{
			MaxAttempts:     conf.TeamAPI.MaxRetries,
			InitialInterval: 500 * time.Millisecond,
			Retryable:       isTransientTeamError,
		},
	}
}

// isTransientTeamError reports whether a provisioning failure is worth
// retrying. Bad auth and unknown users will not self-resolve.
func isTransientTeamError(err error) bool {
	if callErr, ok := err.(*teamCallError); ok {
		return callErr.StatusCode != http.StatusUnauthorized && callErr.StatusCode != http.StatusNotFound
	}
	return true
}

// SetRegion selects the endpoint used by subsequent CreateTeam calls. An
// unknown code is rejected and the prior region is retained.
func (t *TeamClient) SetRegion(region model.Region) error {
	if !region.Valid() {
		return fmt.Errorf("unknown region %q", region)
	}
	t.mu.Lock()
	t.region = region
	t.mu.Unlock()
	return nil
}

// Region returns the currently selected region.
func (t *TeamClient) Region() model.Region {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.region
}

func (t *TeamClient) endpoint() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.endpoints[t.region]
}

// CreateTeam provisions one team for ownerID, retrying transient failures up
// to the configured cap. The result is always structured; transport and HTTP
// failures are folded into it, never returned as an error.
func (t *TeamClient) CreateTeam(ctx context.Context, ownerID, teamName string, opts model.TeamOptions) model.TeamResult {
	var result model.TeamResult

	err := t.retry.Do(ctx, func() error {
		var callErr error
		result, callErr = t.createTeamOnce(ctx, ownerID, teamName, opts)
		return callErr
	})
	if err == nil {
		return result
	}

	if callErr, ok := errorAsTeamCall(err); ok {
		return model.TeamResult{
			Success:      false,
			ErrorMessage: callErr.Message,
			HTTPStatus:   callErr.StatusCode,
			ResponseBody: callErr.Body,
		}
	}
	return model.TeamResult{Success: false, ErrorMessage: err.Error()}
}

func (t *TeamClient) createTeamOnce(ctx context.Context, ownerID, teamName string, opts model.TeamOptions) (model.TeamResult, error) {
	payload, err := request.ToJSONReq(teamRequest{
		OwnerID:                  ownerID,
		TeamName:                 teamName,
		AdminSessionReviewToggle: false,
		AllowToAddTeamMembers:    opts.AllowMemberInvites,
		ChargeFutureMembers:      opts.AutoChargeNewMembers,
		IsPilot:                  false,
		IsStripeManaged:          opts.IsManagedExternally,
		SubscribedPlan:           string(opts.Plan),
	})
	if err != nil {
		return model.TeamResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint(), payload)
	if err != nil {
		return model.TeamResult{}, err
	}
	req.Header.Set("Authorization", request.BearerAuth(t.token))

	var decoded map[string]interface{}
	resp, body, err := request.Call(t.client, req, &decoded)
	if err != nil {
		return model.TeamResult{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.TeamResult{}, &teamCallError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Message:    extractTeamError(decoded, resp.StatusCode),
		}
	}

	return model.TeamResult{Success: true, TeamID: teamIDFrom(decoded)}, nil
}

// extractTeamError pulls the best available error message out of a failure
// body, checking detail.msg, then detail, then message, before falling back
// to the bare status.
func extractTeamError(decoded map[string]interface{}, statusCode int) string {
	if detail, ok := decoded["detail"]; ok {
		if detailMap, ok := detail.(map[string]interface{}); ok {
			if msg, ok := detailMap["msg"].(string); ok && msg != "" {
				return msg
			}
		}
		if detailStr, ok := detail.(string); ok && detailStr != "" {
			return detailStr
		}
	}
	if msg, ok := decoded["message"].(string); ok && msg != "" {
		return msg
	}
	return fmt.Sprintf("HTTP %d", statusCode)
}

func teamIDFrom(decoded map[string]interface{}) string {
	for _, key := range []string{"team_id", "id"} {
		switch v := decoded[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case json.Number:
			return v.String()
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}

// errorAsTeamCall unwraps err (including through ErrMaxRetries) down to the
// structured provisioning failure, when there is one.
func errorAsTeamCall(err error) (*teamCallError, bool) {
	var callErr *teamCallError
	if errors.As(err, &callErr) {
		return callErr, true
	}
	return nil, false
}
