package base

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, "%%", ContainsPattern(""))
	assert.Equal(t, "%card%", ContainsPattern("card"))
	assert.Equal(t, `%50\%\_off\\%`, ContainsPattern(`50%_off\`))
}
