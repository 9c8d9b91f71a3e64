package certification

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/certchain-backend/internal/data/aggregates"
	"github.com/yungbote/certchain-backend/internal/data/repos"
	types "github.com/yungbote/certchain-backend/internal/domain"
	"github.com/yungbote/certchain-backend/internal/observability"
	"github.com/yungbote/certchain-backend/internal/platform/dbctx"
	"github.com/yungbote/certchain-backend/internal/platform/logger"
)

// party is who a certificate is issued to and for what.
type party struct {
	Recipient string
	Topic     string
	Wallet    string
}

type nameResolver struct {
	users    repos.UserRepo
	topics   repos.TopicRepo
	renderer Renderer
	log      *logger.Logger
	metrics  *observability.Metrics
	flight   singleflight.Group
}

// resolve loads the user and topic display names concurrently. A missing
// row or empty name falls back to the copy's placeholder; a failed lookup is
// returned so the wallet is never guessed from a store outage.
func (n *nameResolver) resolve(ctx context.Context, cert *types.Certification) (party, error) {
	var (
		user  *types.User
		topic *types.Topic
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err, _ := n.flight.Do("user:"+cert.UserID.String(), func() (any, error) {
			return n.lookupUser(gctx, cert.UserID)
		})
		if err != nil {
			return aggregates.MapError(opResolveNames, err)
		}
		user, _ = v.(*types.User)
		return nil
	})
	g.Go(func() error {
		v, err, _ := n.flight.Do("topic:"+cert.TopicID.String(), func() (any, error) {
			return n.lookupTopic(gctx, cert.TopicID)
		})
		if err != nil {
			return aggregates.MapError(opResolveNames, err)
		}
		topic, _ = v.(*types.Topic)
		return nil
	})
	if err := g.Wait(); err != nil {
		n.log.Warn("display name lookup failed", "certification_id", cert.ID, "user_id", cert.UserID, "topic_id", cert.TopicID, "error", err)
		return party{}, err
	}

	recipientPH, topicPH := n.renderer.Placeholders()
	out := party{Recipient: recipientPH, Topic: topicPH}

	if user != nil {
		out.Wallet = user.Wallet()
	}
	if user != nil && strings.TrimSpace(user.Name) != "" {
		out.Recipient = user.Name
	} else {
		n.fallback(cert, "user")
	}
	if topic != nil && strings.TrimSpace(topic.Name) != "" {
		out.Topic = topic.Name
	} else {
		n.fallback(cert, "topic")
	}
	return out, nil
}

func (n *nameResolver) lookupUser(ctx context.Context, id uuid.UUID) (*types.User, error) {
	rows, err := n.users.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{id})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (n *nameResolver) lookupTopic(ctx context.Context, id uuid.UUID) (*types.Topic, error) {
	rows, err := n.topics.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{id})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (n *nameResolver) fallback(cert *types.Certification, kind string) {
	n.metrics.NameFallback(kind)
	n.log.Warn("display name missing; using placeholder",
		"certification_id", cert.ID, "user_id", cert.UserID, "topic_id", cert.TopicID, "kind", kind)
}
