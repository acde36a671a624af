package relation

import (
	"sync"

	"github.com/syssam/relgraph"
)

// NamedRelation is a relation registered under a name on its source entity.
type NamedRelation struct {
	Name string
	Related
}

// Registry holds the entities, relations and links of a schema.
// It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	entities  []*Entity
	byName    map[string]*Entity
	byTable   map[string]*Entity
	relations map[string][]NamedRelation // by source entity name
	order     []NamedRelation            // declaration order
	links     []Linked
	linkIdx   map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:    make(map[string]*Entity),
		byTable:   make(map[string]*Entity),
		relations: make(map[string][]NamedRelation),
		linkIdx:   make(map[string]int),
	}
}

// AddEntity registers an entity. Entity names and table names must be unique.
func (r *Registry) AddEntity(e *Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[e.Name()]; ok {
		return relgraph.NewDuplicateError("entity", e.Name())
	}
	table := e.Table().Name()
	if _, ok := r.byTable[table]; ok {
		return relgraph.NewDuplicateError("table", table)
	}
	r.entities = append(r.entities, e)
	r.byName[e.Name()] = e
	r.byTable[table] = e
	return nil
}

// Entity returns the named entity.
func (r *Registry) Entity(name string) (*Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[name]
	if !ok {
		return nil, relgraph.NewNotFoundError("entity", name)
	}
	return e, nil
}

// EntityByTable returns the entity stored in the given table.
func (r *Registry) EntityByTable(table string) (*Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byTable[table]
	if !ok {
		return nil, relgraph.NewNotFoundError("table", table)
	}
	return e, nil
}

// Entities returns the registered entities in registration order.
func (r *Registry) Entities() []*Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Entity(nil), r.entities...)
}

// AddRelation registers rel under name on its source entity. Both
// endpoints must be registered.
func (r *Registry) AddRelation(name string, rel Related) error {
	if rel.IsZero() {
		return relgraph.NewDeclarationError(name, "relation was not declared with Direct or Through")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range []*Entity{rel.From(), rel.To()} {
		if r.byName[e.Name()] != e {
			return relgraph.NewNotFoundError("entity", e.Name())
		}
	}
	owner := rel.From().Name()
	for _, nr := range r.relations[owner] {
		if nr.Name == name {
			return relgraph.NewDuplicateError("relation", owner+"."+name)
		}
	}
	nr := NamedRelation{Name: name, Related: rel}
	r.relations[owner] = append(r.relations[owner], nr)
	r.order = append(r.order, nr)
	return nil
}

// Relation returns the relation registered under name on the entity.
func (r *Registry) Relation(entity, name string) (Related, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, nr := range r.relations[entity] {
		if nr.Name == name {
			return nr.Related, nil
		}
	}
	return Related{}, relgraph.NewNotFoundError("relation", entity+"."+name)
}

// RelationTo returns the first relation registered from one entity to another.
func (r *Registry) RelationTo(from, to string) (Related, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, nr := range r.relations[from] {
		if nr.To().Name() == to {
			return nr.Related, nil
		}
	}
	return Related{}, relgraph.NewNotFoundError("relation", from+" -> "+to)
}

// Relations returns the relations of the entity in registration order.
func (r *Registry) Relations(entity string) []NamedRelation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]NamedRelation(nil), r.relations[entity]...)
}

// AddLink registers a named link. Both endpoints must be registered.
func (r *Registry) AddLink(l Linked) error {
	if l.IsZero() {
		return relgraph.NewDeclarationError(l.Name(), "link was not declared with Link")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.linkIdx[l.Name()]; ok {
		return relgraph.NewDuplicateError("link", l.Name())
	}
	for _, e := range []*Entity{l.From(), l.To()} {
		if r.byName[e.Name()] != e {
			return relgraph.NewNotFoundError("entity", e.Name())
		}
	}
	r.linkIdx[l.Name()] = len(r.links)
	r.links = append(r.links, l)
	return nil
}

// Link returns the named link.
func (r *Registry) Link(name string) (Linked, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.linkIdx[name]
	if !ok {
		return Linked{}, relgraph.NewNotFoundError("link", name)
	}
	return r.links[i], nil
}

// Links returns the registered links in registration order.
func (r *Registry) Links() []Linked {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Linked(nil), r.links...)
}

// ForeignKeys returns the foreign keys of every owner-side relation in
// declaration order. A relation declared on both sides yields a single
// key; keys are deduplicated by name, first declaration wins.
func (r *Registry) ForeignKeys() []ForeignKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var (
		fks  []ForeignKey
		seen = make(map[string]struct{})
	)
	for _, nr := range r.order {
		for _, d := range nr.Path() {
			if !d.IsOwner {
				continue
			}
			fk := d.ForeignKey()
			if _, ok := seen[fk.Name]; ok {
				continue
			}
			seen[fk.Name] = struct{}{}
			fks = append(fks, fk)
		}
	}
	return fks
}
