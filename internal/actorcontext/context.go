package actorcontext

import "context"

type key string

var actorKey key = "actor"

// Actor identifies the staff member behind a request.
type Actor struct {
	ID   string
	Name string
}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey).(Actor)
	return actor, ok && actor.ID != ""
}

// ActorID returns the actor id or an empty string.
func ActorID(ctx context.Context) string {
	actor, _ := ActorFromContext(ctx)
	return actor.ID
}
