// Package bykenet provides the field level building blocks of a replication engine.
//
// Components of a protocol implement ReplicateSafe. Replication code reaches
// them through four short-lived views:
//
//	ComponentRef / ComponentMut        typed, read only / read write
//	ComponentDynRef / ComponentDynMut  type erased, read only / read write
//
// Each view wraps an accessor supplied by the storage, so a view works the
// same whether the component lives in a Cell, a table row or is computed on
// demand. Views are released with Release, which returns the borrow to the
// storage:
//
//	position := cell.Mut()
//	defer position.Release()
//
//	position.Mut().X.Set(12)
//
// Which fields changed is tracked per component in a mask.ChangeMask.
package bykenet
