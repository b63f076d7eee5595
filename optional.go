package submatch

// Option is a sum-typed optional value: ⊥ ("None") or a present value. Target
// node ids and target proximities use this instead of a sentinel such as -1,
// because miss semantics participate in arithmetic (they set misses=1 and
// skip delta_plus) and conflating ⊥ with a real id would corrupt the score.
type Option[T any] struct {
	value T
	ok    bool
}

// Some wraps a present value.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, ok: true}
}

// None returns ⊥.
func None[T any]() Option[T] {
	return Option[T]{}
}

// IsSome reports whether the option holds a value.
func (o Option[T]) IsSome() bool {
	return o.ok
}

// Get returns the held value and true, or the zero value and false.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.ok
}

// MustGet returns the held value, panicking if the option is ⊥. Callers must
// check IsSome first; this exists for call sites that already did.
func (o Option[T]) MustGet() T {
	if !o.ok {
		panic("submatch: Option.MustGet called on ⊥")
	}
	return o.value
}
