package identity

import (
	"context"
	"fmt"
	"net/http"

	"github.com/alimikegami/healthcare-microservices/users-service/config"
	"github.com/alimikegami/healthcare-microservices/users-service/pkg/errs"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type groupsRequest struct {
	Groups []string `json:"groups"`
}

// GroupClient keeps the group memberships held by the external identity
// provider in step with the clinician record.
type GroupClient struct {
	client *resty.Client
	cb     *gobreaker.CircuitBreaker[[]byte]
}

func CreateGroupClient(cfg config.AuthzConfig, cb *gobreaker.CircuitBreaker[[]byte]) *GroupClient {
	client := resty.New().
		SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	if cfg.APIToken != "" {
		client.SetAuthToken(cfg.APIToken)
	}

	return &GroupClient{
		client: client,
		cb:     cb,
	}
}

func (g *GroupClient) AddToGroups(ctx context.Context, userID string, groups []string) error {
	return g.send(ctx, http.MethodPatch, userID, groups)
}

func (g *GroupClient) RemoveFromGroups(ctx context.Context, userID string, groups []string) error {
	return g.send(ctx, http.MethodDelete, userID, groups)
}

func (g *GroupClient) send(ctx context.Context, method, userID string, groups []string) error {
	_, err := g.cb.Execute(func() ([]byte, error) {
		resp, err := g.client.R().
			SetContext(ctx).
			SetPathParam("user_id", userID).
			SetBody(groupsRequest{Groups: groups}).
			Execute(method, "/users/{user_id}/groups")
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("identity provider returned status %d", resp.StatusCode())
		}
		return resp.Body(), nil
	})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GroupClient").Str("method", method).Str("user_id", userID).Msg("")
		return fmt.Errorf("%w: group update for %s failed: %v", errs.ErrServiceUnavailable, userID, err)
	}

	return nil
}

// NoopGroupClient is used when group sync is switched off.
type NoopGroupClient struct{}

func (NoopGroupClient) AddToGroups(ctx context.Context, userID string, groups []string) error {
	log.Ctx(ctx).Debug().Str("user_id", userID).Strs("groups", groups).Msg("group sync disabled, skipping add")
	return nil
}

func (NoopGroupClient) RemoveFromGroups(ctx context.Context, userID string, groups []string) error {
	log.Ctx(ctx).Debug().Str("user_id", userID).Strs("groups", groups).Msg("group sync disabled, skipping remove")
	return nil
}
