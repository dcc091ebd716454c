package bykenet

type erasedRef[P Protocol, R ReplicateSafe[P]] struct {
	inner RefAccessor[P, R]
}

func (e erasedRef[P, R]) ComponentDynRef() ReplicateSafe[P] {
	return e.inner.ComponentRef()
}

func (e erasedRef[P, R]) Release() {
	releaseAccessor(e.inner)
}

type erasedMut[P Protocol, R ReplicateSafe[P]] struct {
	inner MutAccessor[P, R]
}

func (e erasedMut[P, R]) ComponentDynRef() ReplicateSafe[P] {
	return e.inner.ComponentRef()
}

func (e erasedMut[P, R]) ComponentDynMut() ReplicateSafe[P] {
	return e.inner.ComponentMut()
}

func (e erasedMut[P, R]) Release() {
	releaseAccessor(e.inner)
}

// EraseRef turns a typed view into a type erased view of the same component.
// The access moves to the returned value, ref must not be used afterward.
func EraseRef[P Protocol, R ReplicateSafe[P]](ref *ComponentRef[P, R]) *ComponentDynRef[P] {
	if ref.inner == nil {
		panic(ErrReleased)
	}

	inner := ref.inner
	ref.inner = nil

	return NewComponentDynRef[P](erasedRef[P, R]{inner: inner})
}

// EraseMut turns a typed mutable view into a type erased mutable view.
// The access moves to the returned value, ref must not be used afterward.
func EraseMut[P Protocol, R ReplicateSafe[P]](ref *ComponentMut[P, R]) *ComponentDynMut[P] {
	if ref.inner == nil {
		panic(ErrReleased)
	}

	inner := ref.inner
	ref.inner = nil

	return NewComponentDynMut[P](erasedMut[P, R]{inner: inner})
}

type downcastRef[P Protocol, R ReplicateSafe[P]] struct {
	inner DynRefAccessor[P]
}

func (d downcastRef[P, R]) ComponentRef() R {
	return d.inner.ComponentDynRef().(R)
}

func (d downcastRef[P, R]) Release() {
	releaseAccessor(d.inner)
}

type downcastMut[P Protocol, R ReplicateSafe[P]] struct {
	inner DynMutAccessor[P]
}

func (d downcastMut[P, R]) ComponentRef() R {
	return d.inner.ComponentDynRef().(R)
}

func (d downcastMut[P, R]) ComponentMut() R {
	return d.inner.ComponentDynMut().(R)
}

func (d downcastMut[P, R]) Release() {
	releaseAccessor(d.inner)
}

// DowncastRef turns a type erased view into a typed view, if the component
// is of type R. On success the access moves to the returned value.
// On failure ref stays valid.
func DowncastRef[P Protocol, R ReplicateSafe[P]](ref *ComponentDynRef[P]) (*ComponentRef[P, R], bool) {
	if _, ok := ref.Get().(R); !ok {
		return nil, false
	}

	inner := ref.inner
	ref.inner = nil

	return NewComponentRef[P, R](downcastRef[P, R]{inner: inner}), true
}

// DowncastMut turns a type erased mutable view into a typed mutable view,
// if the component is of type R. On success the access moves to the returned value.
func DowncastMut[P Protocol, R ReplicateSafe[P]](ref *ComponentDynMut[P]) (*ComponentMut[P, R], bool) {
	if _, ok := ref.Get().(R); !ok {
		return nil, false
	}

	inner := ref.inner
	ref.inner = nil

	return NewComponentMut[P, R](downcastMut[P, R]{inner: inner}), true
}
