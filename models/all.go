package models

// All lists every model in migration order, parents first.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Form{},
		&Question{},
		&Answer{},
		&QuestionsAnswer{},
	}
}
