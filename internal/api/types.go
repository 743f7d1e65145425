package api

// Student is a roster entry as reported by GET /students.
type Student struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Group string `json:"group"`
}

// AttendanceRecord is one "present today" row for a group.
type AttendanceRecord struct {
	Num   int    `json:"num"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Group string `json:"group"`
	Time  string `json:"time"`
}

// TodayRoster is the envelope returned by GET /attendance/today.
type TodayRoster struct {
	Date     string             `json:"date"`
	Students []AttendanceRecord `json:"students"`
	Total    int                `json:"total"`
}

// RecognizedFace is one matched face from a recognition pass.
type RecognizedFace struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Group             string  `json:"group"`
	Confidence        float64 `json:"confidence"`
	AlreadyRegistered bool    `json:"already_registered"`
	Time              string  `json:"time"`
}

// RecognitionResult is the response of one POST /attendance/recognize call.
// The service may return fewer recognized+unknown entries than total faces;
// the payload is rendered as-is either way.
type RecognitionResult struct {
	TotalFaces     int              `json:"total_faces"`
	Recognized     []RecognizedFace `json:"recognized"`
	Unknown        int              `json:"unknown"`
	AttendanceFile string           `json:"attendance_file,omitempty"`
}

// Upload carries photo bytes for a multipart request.
type Upload struct {
	Filename string
	MIME     string
	Data     []byte
}
