package dosmouse_test

import (
	"testing"

	"github.com/ReversedGames/dosbox-staging/dosmouse"
	"github.com/ReversedGames/dosbox-staging/internal/machine"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, d *dosmouse.Driver, regs dosmouse.Registers) dosmouse.Registers {
	t.Helper()
	require.NoError(t, d.Dispatch(&regs))
	return regs
}

// service consumes pending input the way the paced interrupt does.
func service(d *dosmouse.Driver, m *machine.Machine) (uint8, bool) {
	return d.ServiceEvents(&m.Regs)
}
