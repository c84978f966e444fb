package repository

import "errors"

// ErrDuplicateActive возвращается, когда у врача уже есть активная запись
// на это же время (нарушение частичного уникального индекса).
var ErrDuplicateActive = errors.New("duplicate active appointment")

// ErrDuplicateContact возвращается при нарушении уникальности email,
// номера лицензии или привязанного чата Telegram.
var ErrDuplicateContact = errors.New("duplicate contact")
