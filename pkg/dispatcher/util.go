package dispatcher

import (
	"context"
	"time"
)

func now() time.Time { return time.Now() }

func bgCtx() context.Context { return context.Background() }
