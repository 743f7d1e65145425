package attendance

import "rollcall/internal/api"

// Breakdown is the render-ready view of a recognition result. Every
// recognized face lands in exactly one of Fresh or Duplicates; unknown
// faces are not identifiable and stay a bare count.
type Breakdown struct {
	TotalFaces     int
	Fresh          []api.RecognizedFace
	Duplicates     []api.RecognizedFace
	Unknown        int
	AttendanceFile string
}

// RecognizedCount is the number of faces matched to enrolled students.
func (b Breakdown) RecognizedCount() int {
	return len(b.Fresh) + len(b.Duplicates)
}

// Reconcile partitions a raw recognition result for display: faces marked
// present by this pass versus faces that were already on today's list.
// Order is preserved and repeated ids are kept as the service sent them.
func Reconcile(result *api.RecognitionResult) Breakdown {
	if result == nil {
		return Breakdown{}
	}
	b := Breakdown{
		TotalFaces:     result.TotalFaces,
		Unknown:        result.Unknown,
		AttendanceFile: result.AttendanceFile,
	}
	for _, face := range result.Recognized {
		if face.AlreadyRegistered {
			b.Duplicates = append(b.Duplicates, face)
		} else {
			b.Fresh = append(b.Fresh, face)
		}
	}
	return b
}
