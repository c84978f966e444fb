package handlers

import "strings"

// Command разобранная команда бота
type Command struct {
	Name string
	Args []string
}

// ParseCommand разбирает "/book@DoctorBot P1 D1 2025-01-01 9:30 AM".
// ok=false, если текст не начинается с '/'.
func ParseCommand(text string) (Command, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return Command{}, false
	}

	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.Index(name, "@"); at >= 0 {
		name = name[:at]
	}

	return Command{Name: strings.ToLower(name), Args: fields[1:]}, true
}

// rest склеивает аргументы начиная с i: время "9:30 AM" и заметки идут через пробел
func (c Command) rest(i int) string {
	if i >= len(c.Args) {
		return ""
	}
	return strings.Join(c.Args[i:], " ")
}
