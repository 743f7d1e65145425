package main

import (
	"crypto/subtle"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"rollcall/internal/api"
	"rollcall/internal/attendance"
	"rollcall/internal/auth"
	"rollcall/internal/config"
	"rollcall/internal/photo"
	"rollcall/internal/session"
	"rollcall/internal/students"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// app bridges the operator UI to the workflow packages. Handlers stay thin:
// every policy decision lives in the internal packages.
type app struct {
	cfg      config.App
	backend  *api.Client
	sess     *session.Session
	registry *session.Registry
	att      *attendance.Workflow
	form     *students.Registration
	dir      *students.Directory
	camera   *photo.Camera
	library  *photo.Library
}

func (a *app) routes(g *gin.RouterGroup) {
	g.GET("/state", a.handleState)
	g.POST("/mode", a.handleMode)
	g.POST("/groups", a.handleSelectGroup)
	g.GET("/library", a.handleLibrary)

	g.POST("/attendance/photo", a.handleAttendancePhoto)
	g.POST("/attendance/submit", a.handleSubmit)
	g.GET("/attendance/today", a.handleToday)
	g.POST("/attendance/clear", a.handleClearPass)
	g.GET("/attendance/download", a.handleDownload)

	g.POST("/register/photo", a.handleRegisterPhoto)
	g.POST("/register", a.handleRegister)

	g.POST("/students/refresh", a.handleStudentsRefresh)
	g.GET("/students", a.handleStudents)
	g.POST("/students/:id/delete-request", a.handleDeleteRequest)
	g.DELETE("/students/:id", a.handleDelete)
}

func (a *app) handleLogin(c *gin.Context) {
	if a.cfg.OperatorPIN == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "login disabled"})
		return
	}
	var req struct {
		PIN string `json:"pin" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.PIN), []byte(a.cfg.OperatorPIN)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong pin"})
		return
	}
	token, exp, err := auth.Issue("operator", "operator", a.cfg.JWTIssuer, a.cfg.JWTSigningKey, a.cfg.AccessTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.SetCookie("rollcall_session", token, int(a.cfg.AccessTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"access_token": token, "expires_at": exp.Unix()})
}

func (a *app) handleState(c *gin.Context) {
	state := gin.H{
		"mode":   a.sess.Mode(),
		"group":  a.sess.ActiveGroup(),
		"groups": a.sess.Groups(),
		"pass":   a.att.State(),
	}
	if h := a.att.Photo(); h != nil {
		state["photo"] = gin.H{"id": h.ID, "filename": h.Filename, "source": h.Source}
	}
	if res := a.att.Result(); res != nil {
		state["result"] = breakdownJSON(attendance.Reconcile(res))
	}
	c.JSON(http.StatusOK, state)
}

func (a *app) handleMode(c *gin.Context) {
	var req struct {
		Mode string `json:"mode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mode := session.Mode(req.Mode)
	switch mode {
	case session.ModeAttendance, session.ModeRegister, session.ModeDirectory:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown mode"})
		return
	}
	// leaving the attendance tab drops the transient pass state
	if a.sess.Mode() == session.ModeAttendance && mode != session.ModeAttendance {
		a.att.Clear()
	}
	a.sess.SwitchMode(mode)
	c.JSON(http.StatusOK, gin.H{"mode": mode})
}

func (a *app) handleSelectGroup(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !a.sess.SelectGroup(c.Request.Context(), req.Name) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "group name required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": a.sess.ActiveGroup(), "groups": a.sess.Groups()})
}

func (a *app) handleLibrary(c *gin.Context) {
	names, err := a.library.List()
	if err != nil {
		if errors.Is(err, photo.ErrPermissionDenied) {
			c.JSON(http.StatusOK, gin.H{"photos": []string{}, "available": false})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"photos": names, "available": true})
}

func (a *app) handleAttendancePhoto(c *gin.Context) {
	h, done := a.acquire(c)
	if done {
		return
	}
	if err := a.att.Attach(h); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pass": a.att.State(), "photo": gin.H{"id": h.ID, "filename": h.Filename, "source": h.Source}})
}

func (a *app) handleSubmit(c *gin.Context) {
	result, err := a.att.Submit(c.Request.Context(), a.sess.ActiveGroup())
	if err != nil {
		switch {
		case errors.Is(err, attendance.ErrNoPhoto),
			errors.Is(err, attendance.ErrSubmitInFlight),
			errors.Is(err, attendance.ErrPassComplete):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			serviceError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, breakdownJSON(attendance.Reconcile(result)))
}

func (a *app) handleToday(c *gin.Context) {
	group := a.sess.ActiveGroup()
	payload := gin.H{"group": group}
	if err := a.att.RefreshToday(c.Request.Context(), group); err != nil {
		payload["error"] = serviceMessage(err)
	}
	payload["students"] = a.att.Roster()
	c.JSON(http.StatusOK, payload)
}

func (a *app) handleClearPass(c *gin.Context) {
	a.att.Clear()
	c.JSON(http.StatusOK, gin.H{"pass": a.att.State()})
}

func (a *app) handleDownload(c *gin.Context) {
	data, name, err := a.att.Download(c.Request.Context(), a.sess.ActiveGroup())
	if err != nil {
		serviceError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, xlsxMIME, data)
}

func (a *app) handleRegisterPhoto(c *gin.Context) {
	h, done := a.acquire(c)
	if done {
		return
	}
	a.form.AttachPhoto(h)
	c.JSON(http.StatusOK, gin.H{"photo": gin.H{"id": h.ID, "filename": h.Filename, "source": h.Source}})
}

func (a *app) handleRegister(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
		ID   string `json:"id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a.form.SetName(req.Name)
	a.form.SetID(req.ID)

	message, err := a.form.Submit(c.Request.Context(), a.sess.ActiveGroup())
	if err != nil {
		var incomplete *students.IncompleteError
		if errors.As(err, &incomplete) {
			c.JSON(http.StatusBadRequest, gin.H{"error": incomplete.Error(), "missing": incomplete.Missing})
			return
		}
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "groups": a.sess.Groups()})
}

func (a *app) handleStudentsRefresh(c *gin.Context) {
	if err := a.dir.FetchAll(c.Request.Context()); err != nil {
		// prior list stays on screen; report and let the operator retry
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": a.dir.Students()})
}

func (a *app) handleStudents(c *gin.Context) {
	list := a.dir.Filter(c.Query("q"))
	if list == nil {
		list = []api.Student{}
	}
	c.JSON(http.StatusOK, gin.H{"students": list})
}

func (a *app) handleDeleteRequest(c *gin.Context) {
	student, err := a.dir.RequestDelete(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"student": student})
}

func (a *app) handleDelete(c *gin.Context) {
	err := a.dir.ConfirmDelete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, students.ErrNotConfirmed) {
			c.JSON(http.StatusConflict, gin.H{"error": "confirm the delete first"})
			return
		}
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": a.dir.Students()})
}

// acquire resolves a photo from the request: an uploaded file, the camera,
// or a library pick. Returns done=true when it already wrote the response
// (cancellations and denials included).
func (a *app) acquire(c *gin.Context) (*photo.Handle, bool) {
	var (
		h   *photo.Handle
		err error
	)

	if strings.Contains(c.ContentType(), "multipart/form-data") {
		file, header, ferr := c.Request.FormFile("photo")
		if ferr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "photo field required"})
			return nil, true
		}
		defer file.Close()
		data, ferr := io.ReadAll(file)
		if ferr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "read photo failed"})
			return nil, true
		}
		h, err = photo.FromBytes(header.Filename, data, photo.SourceLibrary, a.cfg.PhotoMaxDim)
	} else {
		var req struct {
			Source string `json:"source" binding:"required"`
			Name   string `json:"name"`
		}
		if berr := c.ShouldBindJSON(&req); berr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": berr.Error()})
			return nil, true
		}
		switch req.Source {
		case "camera":
			h, err = a.camera.Capture(c.Request.Context())
		case "library":
			h, err = a.library.Pick(req.Name)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "source must be camera or library"})
			return nil, true
		}
	}

	switch {
	case err == nil:
		return h, false
	case errors.Is(err, photo.ErrCanceled):
		c.JSON(http.StatusOK, gin.H{"canceled": true})
	case errors.Is(err, photo.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "photo capability unavailable"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
	return nil, true
}

func breakdownJSON(b attendance.Breakdown) gin.H {
	fresh := b.Fresh
	if fresh == nil {
		fresh = []api.RecognizedFace{}
	}
	duplicates := b.Duplicates
	if duplicates == nil {
		duplicates = []api.RecognizedFace{}
	}
	return gin.H{
		"total_faces":     b.TotalFaces,
		"recognized":      b.RecognizedCount(),
		"fresh":           fresh,
		"already_present": duplicates,
		"unknown":         b.Unknown,
		"attendance_file": b.AttendanceFile,
	}
}

// serviceError reports a failed backend call: the service's own message
// verbatim when it sent one, a generic fallback otherwise.
func serviceError(c *gin.Context, err error) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		status := apiErr.Status
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": apiErr.Error()})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": serviceMessage(err)})
}

func serviceMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return "could not reach the attendance service"
}
