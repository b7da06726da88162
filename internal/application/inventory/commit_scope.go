package inventory

import "context"

// CommitScope acumula lo que un consumo anidado publica al confirmarse (métricas y log)
// hasta que la transacción externa del driver hace Commit. Si la externa se deshace,
// lo pendiente se descarta. No es seguro para uso concurrente: una operación, un scope.
type CommitScope struct {
	pending []func()
}

type commitScopeKey struct{}

// WithCommitScope devuelve un ctx que difiere las publicaciones de ConsumeInTx.
// El driver llama Committed solo si su TxRunner.Run terminó sin error.
func WithCommitScope(ctx context.Context) (context.Context, *CommitScope) {
	s := &CommitScope{}
	return context.WithValue(ctx, commitScopeKey{}, s), s
}

// Committed ejecuta lo pendiente, en orden.
func (s *CommitScope) Committed() {
	pending := s.pending
	s.pending = nil
	for _, fn := range pending {
		fn()
	}
}

// afterCommit difiere fn si ctx lleva un scope; si no, la transacción ya confirmó y corre ya.
func afterCommit(ctx context.Context, fn func()) {
	if s, ok := ctx.Value(commitScopeKey{}).(*CommitScope); ok {
		s.pending = append(s.pending, fn)
		return
	}
	fn()
}
