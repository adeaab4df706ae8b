package internal

import "context"

type Configurer interface {
	Configure(envs map[string]string) error
}

type Opener interface {
	Open(ctx context.Context) error
	Closer
}

type Closer interface {
	Close(ctx context.Context) error
}

type Clearer interface {
	Clear(ctx context.Context) error
}

// Notifier is implemented by anything that publishes state changes
// to registered listeners; the returned function unregisters it.
type Notifier[T any] interface {
	Subscribe(fx func(T)) (unsubscribe func())
}
