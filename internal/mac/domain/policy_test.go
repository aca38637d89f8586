package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckReadAccess(t *testing.T) {
	t.Run("Success_DominatingSubject", func(t *testing.T) {
		subject := Subject{Level: Secret, Compartments: NewCompartments("OPS")}
		decision := CheckReadAccess(subject, Label{Level: Confidential, Compartments: NewCompartments("OPS")})
		assert.True(t, decision.Allowed)
	})

	t.Run("Error_ReadUp", func(t *testing.T) {
		subject := Subject{Level: Confidential}
		decision := CheckReadAccess(subject, Label{Level: TopSecret})
		assert.False(t, decision.Allowed)
		assert.Equal(t, RuleSimpleSecurity, decision.Rule)
		assert.Equal(t, "clearance level CONFIDENTIAL < required TOP_SECRET", decision.Reason)
	})

	t.Run("Error_MissingCompartment", func(t *testing.T) {
		subject := Subject{Level: TopSecret, Compartments: NewCompartments("C1")}
		decision := CheckReadAccess(subject, Label{Level: Secret, Compartments: NewCompartments("C1", "C2")})
		assert.False(t, decision.Allowed)
		assert.Equal(t, RuleNeedToKnow, decision.Rule)
		assert.Equal(t, "missing compartment C2", decision.Reason)
	})

	t.Run("Success_TrustedSubjectBypass", func(t *testing.T) {
		subject := Subject{Level: Unclassified, TrustedSubject: true}
		decision := CheckReadAccess(subject, Label{Level: TopSecret, Compartments: NewCompartments("X")})
		assert.True(t, decision.Allowed)
		assert.Equal(t, RuleTrustedSubject, decision.Rule)
	})
}

func TestCheckReadAccess_LevelPairs(t *testing.T) {
	levels := []SecurityLevel{Unclassified, Confidential, Secret, TopSecret}
	compartments := NewCompartments("OPS")

	for _, l1 := range levels {
		for _, l2 := range levels {
			if l1 > l2 {
				continue
			}
			dominating := CheckReadAccess(
				Subject{Level: l1, Compartments: compartments},
				Label{Level: l2, Compartments: compartments},
			)
			assert.Equal(t, l1 == l2, dominating.Allowed, "subject %s object %s", l1, l2)

			lacking := CheckReadAccess(
				Subject{Level: l1},
				Label{Level: l2, Compartments: compartments},
			)
			assert.False(t, lacking.Allowed, "subject %s object %s without compartment", l1, l2)
		}
	}
}

func TestCheckWriteAccess(t *testing.T) {
	t.Run("Success_WriteUp", func(t *testing.T) {
		subject := Subject{Level: Confidential, Compartments: NewCompartments("OPS")}
		decision := CheckWriteAccess(subject, Label{Level: Secret, Compartments: NewCompartments("OPS", "FIN")})
		assert.True(t, decision.Allowed)
	})

	t.Run("Error_WriteDown", func(t *testing.T) {
		subject := Subject{Level: Secret}
		decision := CheckWriteAccess(subject, Label{Level: Unclassified})
		assert.False(t, decision.Allowed)
		assert.Equal(t, RuleStarProperty, decision.Rule)
		assert.Equal(t, "target level UNCLASSIFIED < clearance level SECRET", decision.Reason)
	})

	t.Run("Error_OutsideCompartments", func(t *testing.T) {
		subject := Subject{Level: Secret, Compartments: NewCompartments("OPS", "FIN")}
		decision := CheckWriteAccess(subject, Label{Level: Secret, Compartments: NewCompartments("OPS")})
		assert.False(t, decision.Allowed)
		assert.Equal(t, "missing compartment FIN on target", decision.Reason)
	})

	t.Run("Success_TrustedSubjectBypass", func(t *testing.T) {
		subject := Subject{Level: TopSecret, TrustedSubject: true}
		assert.True(t, CheckWriteAccess(subject, Label{Level: Unclassified}).Allowed)
	})
}

func TestClearance_Subject(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Success_Active", func(t *testing.T) {
		expires := now.Add(time.Hour)
		clr := &Clearance{Level: Secret, Compartments: NewCompartments("OPS"), ExpiresAt: &expires}
		subject := clr.Subject(now)
		assert.Equal(t, Secret, subject.Level)
		assert.Equal(t, Compartments{"OPS"}, subject.Compartments)
	})

	t.Run("Success_ExpiredIsLowest", func(t *testing.T) {
		expired := now.Add(-time.Second)
		clr := &Clearance{Level: TopSecret, Compartments: NewCompartments("OPS"), TrustedSubject: true, ExpiresAt: &expired}
		subject := clr.Subject(now)
		assert.Equal(t, LowestLevel, subject.Level)
		assert.Empty(t, subject.Compartments)
		assert.False(t, subject.TrustedSubject)
	})

	t.Run("Success_NilIsLowest", func(t *testing.T) {
		var clr *Clearance
		subject := clr.Subject(now)
		assert.Equal(t, LowestLevel, subject.Level)
		assert.False(t, CheckReadAccess(subject, Label{Level: Confidential}).Allowed)
		assert.True(t, CheckReadAccess(subject, Label{Level: Unclassified}).Allowed)
	})
}

func TestModeForAction(t *testing.T) {
	assert.Equal(t, ModeRead, ModeForAction("read"))
	assert.Equal(t, ModeRead, ModeForAction("EXECUTE"))
	assert.Equal(t, ModeWrite, ModeForAction("write"))
	assert.Equal(t, ModeWrite, ModeForAction("delete"))
	assert.Equal(t, ModeWrite, ModeForAction("share"))
}
