// Package domain contains the core task-management entities: users, tasks,
// categories and tags, together with the ordered status and priority sets and
// the derived-state rules (overdue, due soon, completion bookkeeping) that
// apply to a single task. It has no knowledge of storage or transport.
//
// Sub-packages build on these entities: hierarchy guards parent assignment
// against cycles, and analytics aggregates collections of tasks.
package domain
