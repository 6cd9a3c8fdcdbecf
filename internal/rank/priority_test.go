package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "DYSP", Key("Dy.SP"))
	assert.Equal(t, "DYSP", Key("dysp"))
	assert.Equal(t, "ADDLSP", Key("Addl. SP"))
	assert.Equal(t, "DGIGP", Key("DG & IGP"))
}

func TestPriority_Ordering(t *testing.T) {
	assert.Less(t, Priority("DYSP"), Priority("PC"))
	assert.Less(t, Priority("DGP"), Priority("ADGP"))
	assert.Less(t, Priority("PSI"), Priority("ASI"))
	assert.Equal(t, Priority("ACP"), Priority("Dy.SP"))
}

func TestPriority_UnknownAndBlankSortLast(t *testing.T) {
	assert.Equal(t, Unknown, Priority("Honorary Warden"))
	assert.Equal(t, Blank, Priority("  "))
	assert.Less(t, Priority("Typist"), Priority("Honorary Warden"))
	assert.Less(t, Priority("Honorary Warden"), Priority(""))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("Dy SP", "DYSP"))
	assert.False(t, Equal("SP", "DYSP"))
}
