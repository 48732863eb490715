package domain

// Actor maps to the actors table
type Actor struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Age    int     `json:"age"`
	Gender *string `json:"gender"`
}

// CreateActorRequest is the body of POST /actors. Pointers distinguish
// absent or null members from zero values.
type CreateActorRequest struct {
	Name   *string  `json:"name" validate:"omitempty,max=200"`
	Age    *Integer `json:"age" validate:"omitempty,min=0"`
	Gender *string  `json:"gender" validate:"omitempty,max=100"`
}

// Validate requires name and age and applies the length and range rules
func (r *CreateActorRequest) Validate() error {
	if r.Name == nil || r.Age == nil {
		return ErrMissingFields
	}
	return validateStruct(r)
}

// Actor builds the row to insert
func (r *CreateActorRequest) Actor() Actor {
	return Actor{
		Name:   *r.Name,
		Age:    int(*r.Age),
		Gender: r.Gender,
	}
}

// UpdateActorRequest is the body of PATCH /actors/{id}.
// nil = not sent, keep the stored value.
type UpdateActorRequest struct {
	Name   *string  `json:"name" validate:"omitempty,max=200"`
	Age    *Integer `json:"age" validate:"omitempty,min=0"`
	Gender *string  `json:"gender" validate:"omitempty,max=100"`
}

// Validate requires at least one member
func (r *UpdateActorRequest) Validate() error {
	if r.Name == nil && r.Age == nil && r.Gender == nil {
		return ErrNoFields
	}
	return validateStruct(r)
}

// Patch returns the columns to change
func (r *UpdateActorRequest) Patch() ActorPatch {
	p := ActorPatch{Name: r.Name, Gender: r.Gender}
	if r.Age != nil {
		age := int(*r.Age)
		p.Age = &age
	}
	return p
}

// ActorPatch holds the columns of a partial update, nil keeps the column
type ActorPatch struct {
	Name   *string
	Age    *int
	Gender *string
}

// Fields lists the changed columns, for audit metadata
func (p ActorPatch) Fields() []string {
	fields := []string{}
	if p.Name != nil {
		fields = append(fields, "name")
	}
	if p.Age != nil {
		fields = append(fields, "age")
	}
	if p.Gender != nil {
		fields = append(fields, "gender")
	}
	return fields
}
