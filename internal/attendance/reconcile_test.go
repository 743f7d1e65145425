package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rollcall/internal/api"
)

func TestReconcile(t *testing.T) {
	t.Run("partitions fresh and duplicate faces", func(t *testing.T) {
		result := &api.RecognitionResult{
			TotalFaces: 4,
			Recognized: []api.RecognizedFace{
				{ID: "S1", Name: "Ana", AlreadyRegistered: false, Time: "08:01"},
				{ID: "S2", Name: "Luis", AlreadyRegistered: true},
				{ID: "S3", Name: "Eva", AlreadyRegistered: false, Time: "08:02"},
			},
			Unknown:        1,
			AttendanceFile: "Asistencia_10A_2026-08-31.xlsx",
		}

		b := Reconcile(result)
		assert.Equal(t, 4, b.TotalFaces)
		assert.Equal(t, 1, b.Unknown)
		assert.Equal(t, 3, b.RecognizedCount())
		assert.Equal(t, "Asistencia_10A_2026-08-31.xlsx", b.AttendanceFile)

		if assert.Len(t, b.Fresh, 2) {
			assert.Equal(t, "Ana", b.Fresh[0].Name)
			assert.Equal(t, "Eva", b.Fresh[1].Name)
		}
		if assert.Len(t, b.Duplicates, 1) {
			assert.Equal(t, "Luis", b.Duplicates[0].Name)
		}
	})

	t.Run("repeated ids are listed, not deduplicated", func(t *testing.T) {
		result := &api.RecognitionResult{
			TotalFaces: 2,
			Recognized: []api.RecognizedFace{
				{ID: "S1", Name: "Ana"},
				{ID: "S1", Name: "Ana"},
			},
		}
		b := Reconcile(result)
		assert.Len(t, b.Fresh, 2)
	})

	t.Run("degenerate payload renders without adjustment", func(t *testing.T) {
		// recognized + unknown > total_faces; rendered as-is
		result := &api.RecognitionResult{
			TotalFaces: 1,
			Recognized: []api.RecognizedFace{{ID: "S1"}, {ID: "S2"}},
			Unknown:    3,
		}
		b := Reconcile(result)
		assert.Equal(t, 1, b.TotalFaces)
		assert.Equal(t, 2, b.RecognizedCount())
		assert.Equal(t, 3, b.Unknown)
	})

	t.Run("zero faces is an empty breakdown", func(t *testing.T) {
		b := Reconcile(&api.RecognitionResult{})
		assert.Zero(t, b.TotalFaces)
		assert.Zero(t, b.RecognizedCount())
		assert.Zero(t, b.Unknown)
	})

	t.Run("nil result", func(t *testing.T) {
		assert.Zero(t, Reconcile(nil).RecognizedCount())
	})
}
