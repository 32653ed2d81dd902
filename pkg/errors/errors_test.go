package errors_test

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/swot-confluence/offline/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestSourceNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := pkgerrors.NewSourceNotFoundError("/flpe/hivdi/1_hivdi.nc", nil)
		assert.Equal(t, "source /flpe/hivdi/1_hivdi.nc not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrSourceNotFound))
		assert.False(t, pkgerrors.IsSchemaMismatch(err))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewSourceNotFoundError("x.nc", nil)
		wrapped := fmt.Errorf("read observation: %w", base)
		assert.True(t, pkgerrors.IsSourceNotFound(wrapped))
	})

	t.Run("unwraps cause", func(t *testing.T) {
		cause := errors.New("stat failed")
		err := pkgerrors.NewSourceNotFoundError("x.nc", cause)
		assert.ErrorIs(t, err, cause)
	})
}

func TestSchemaMismatchError(t *testing.T) {
	t.Run("with path", func(t *testing.T) {
		err := pkgerrors.NewSchemaMismatchError("sword.nc", "reaches/area_fits/fit_coeffs", "shape [3 3 2], want [2 3 n]")
		assert.Equal(t, "schema mismatch in sword.nc at reaches/area_fits/fit_coeffs: shape [3 3 2], want [2 3 n]", err.Error())
		assert.True(t, pkgerrors.IsSchemaMismatch(err))
	})

	t.Run("without path", func(t *testing.T) {
		err := &pkgerrors.SchemaMismatchError{Field: "reach/wse", Message: "variable not found"}
		assert.Equal(t, "schema mismatch at reach/wse: variable not found", err.Error())
	})
}

func TestReachNotFoundError(t *testing.T) {
	err := pkgerrors.NewReachNotFoundError("sword.nc", 77449100061)
	assert.Equal(t, "reach 77449100061 not found in sword.nc", err.Error())
	assert.True(t, pkgerrors.IsReachNotFound(err))
	assert.False(t, pkgerrors.IsSourceNotFound(err))
}

func TestAmbiguousMatchError(t *testing.T) {
	t.Run("no matches", func(t *testing.T) {
		err := pkgerrors.NewAmbiguousMatchError("*_metroman.nc", 42, nil)
		assert.Equal(t, "no match for reach 42 (pattern *_metroman.nc)", err.Error())
		assert.True(t, pkgerrors.IsAmbiguousMatch(err))
	})

	t.Run("several matches", func(t *testing.T) {
		err := pkgerrors.NewAmbiguousMatchError("*_metroman.nc", 42, []string{"a_42_metroman.nc", "b_42_metroman.nc"})
		assert.Contains(t, err.Error(), "2 matches for reach 42")
		assert.Contains(t, err.Error(), "b_42_metroman.nc")
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "run_type",
			Message: "must be constrained or unconstrained",
		}
		assert.Equal(t, "validation failed for field run_type: must be constrained or unconstrained", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "invalid configuration"}
		assert.Equal(t, "validation failed: invalid configuration", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("wrap nil", func(t *testing.T) {
		assert.NoError(t, pkgerrors.WrapValidation("layout", nil))
	})
}

func TestConfigError(t *testing.T) {
	cause := errors.New("file unreadable")
	err := pkgerrors.NewConfigError("viper", "failed to read config", cause)
	assert.Equal(t, "configuration error in viper: failed to read config", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestIOError(t *testing.T) {
	t.Run("wrap", func(t *testing.T) {
		cause := errors.New("permission denied")
		err := pkgerrors.WrapIO("open", "/data/x.nc", cause)
		assert.Equal(t, "IO error during open of /data/x.nc: permission denied", err.Error())
		assert.ErrorIs(t, err, cause)
	})

	t.Run("wrap nil", func(t *testing.T) {
		assert.NoError(t, pkgerrors.WrapIO("open", "/data/x.nc", nil))
	})
}
