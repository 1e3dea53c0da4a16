package ecs

// RowFunc evaluates one row of a dispatch. It is called concurrently for distinct
// rows and must not depend on evaluation order.
type RowFunc func(row int) error

// System is a stateless component requirement plus a per-row update.
//
// Bind is called once per dispatch with the selected columns in requirement order and
// returns the function evaluated for every row. Implementations should resolve their
// typed slices in Bind so the per-row path is plain indexing.
type System interface {
	Name() string
	Requirement() Requirement
	Bind(cols Columns) (RowFunc, error)
}

// System1 runs fn over every row holding an A.
type System1[A any] struct {
	name string
	req  Requirement
	fn   func(*A) error
}

func NewSystem1[A any](name string, fn func(*A) error) *System1[A] {
	return &System1[A]{name: name, req: requirementOf(ComponentOf[A]()), fn: fn}
}

func (s *System1[A]) Name() string             { return s.name }
func (s *System1[A]) Requirement() Requirement { return s.req }

func (s *System1[A]) Bind(cols Columns) (RowFunc, error) {
	as, err := SliceOf[A](cols, 0)
	if err != nil {
		return nil, err
	}
	return func(i int) error { return s.fn(&as[i]) }, nil
}

// System2 runs fn over every row holding an A and a B.
type System2[A, B any] struct {
	name string
	req  Requirement
	fn   func(*A, *B) error
}

func NewSystem2[A, B any](name string, fn func(*A, *B) error) *System2[A, B] {
	return &System2[A, B]{
		name: name,
		req:  requirementOf(ComponentOf[A](), ComponentOf[B]()),
		fn:   fn,
	}
}

func (s *System2[A, B]) Name() string             { return s.name }
func (s *System2[A, B]) Requirement() Requirement { return s.req }

func (s *System2[A, B]) Bind(cols Columns) (RowFunc, error) {
	as, err := SliceOf[A](cols, 0)
	if err != nil {
		return nil, err
	}
	bs, err := SliceOf[B](cols, 1)
	if err != nil {
		return nil, err
	}
	return func(i int) error { return s.fn(&as[i], &bs[i]) }, nil
}

// System3 runs fn over every row holding an A, a B and a C.
type System3[A, B, C any] struct {
	name string
	req  Requirement
	fn   func(*A, *B, *C) error
}

func NewSystem3[A, B, C any](name string, fn func(*A, *B, *C) error) *System3[A, B, C] {
	return &System3[A, B, C]{
		name: name,
		req:  requirementOf(ComponentOf[A](), ComponentOf[B](), ComponentOf[C]()),
		fn:   fn,
	}
}

func (s *System3[A, B, C]) Name() string             { return s.name }
func (s *System3[A, B, C]) Requirement() Requirement { return s.req }

func (s *System3[A, B, C]) Bind(cols Columns) (RowFunc, error) {
	as, err := SliceOf[A](cols, 0)
	if err != nil {
		return nil, err
	}
	bs, err := SliceOf[B](cols, 1)
	if err != nil {
		return nil, err
	}
	cs, err := SliceOf[C](cols, 2)
	if err != nil {
		return nil, err
	}
	return func(i int) error { return s.fn(&as[i], &bs[i], &cs[i]) }, nil
}

// System4 runs fn over every row holding an A, a B, a C and a D.
type System4[A, B, C, D any] struct {
	name string
	req  Requirement
	fn   func(*A, *B, *C, *D) error
}

func NewSystem4[A, B, C, D any](name string, fn func(*A, *B, *C, *D) error) *System4[A, B, C, D] {
	return &System4[A, B, C, D]{
		name: name,
		req:  requirementOf(ComponentOf[A](), ComponentOf[B](), ComponentOf[C](), ComponentOf[D]()),
		fn:   fn,
	}
}

func (s *System4[A, B, C, D]) Name() string             { return s.name }
func (s *System4[A, B, C, D]) Requirement() Requirement { return s.req }

func (s *System4[A, B, C, D]) Bind(cols Columns) (RowFunc, error) {
	as, err := SliceOf[A](cols, 0)
	if err != nil {
		return nil, err
	}
	bs, err := SliceOf[B](cols, 1)
	if err != nil {
		return nil, err
	}
	cs, err := SliceOf[C](cols, 2)
	if err != nil {
		return nil, err
	}
	ds, err := SliceOf[D](cols, 3)
	if err != nil {
		return nil, err
	}
	return func(i int) error { return s.fn(&as[i], &bs[i], &cs[i], &ds[i]) }, nil
}
