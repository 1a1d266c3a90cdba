package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"healthtrack/internal/model"
	"healthtrack/internal/report"
)

func (s *Server) listMedications(w http.ResponseWriter, r *http.Request) {
	list := s.svc.Medications
	if r.URL.Query().Get("active") == "true" {
		list = s.svc.ActiveMedications
	}
	meds, err := list()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meds)
}

func (s *Server) addMedication(w http.ResponseWriter, r *http.Request) {
	var m model.Medication
	if err := decode(w, r, &m); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.svc.AddMedication(m)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) getMedication(w http.ResponseWriter, r *http.Request) {
	m, err := s.svc.Medication(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if m == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) updateMedication(w http.ResponseWriter, r *http.Request) {
	var patch json.RawMessage
	if err := decode(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := s.svc.UpdateMedication(chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if m == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) deleteMedication(w http.ResponseWriter, r *http.Request) {
	s.deleteWith(w, r, s.svc.DeleteMedication)
}

func (s *Server) markTaken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Time string `json:"time"`
	}
	if err := decode(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.svc.MarkTaken(chi.URLParam(r, "id"), body.Time)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) medicationWarnings(w http.ResponseWriter, r *http.Request) {
	warnings, err := s.svc.Warnings(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, warnings)
}

func (s *Server) listWarnings(w http.ResponseWriter, r *http.Request) {
	warnings, err := s.svc.Warnings(r.URL.Query().Get("medicationId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, warnings)
}

func (s *Server) listVitals(w http.ResponseWriter, r *http.Request) {
	typ := model.VitalType(r.URL.Query().Get("type"))
	if typ != "" {
		if _, err := model.ParseVitalType(string(typ)); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}
	vitals, err := s.svc.Vitals(typ)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vitals)
}

func (s *Server) addVital(w http.ResponseWriter, r *http.Request) {
	var v model.VitalReading
	if err := decode(w, r, &v); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.svc.AddVital(v)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) listAppointments(w http.ResponseWriter, r *http.Request) {
	appts, err := s.svc.Appointments()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, appts)
}

func (s *Server) bookAppointment(w http.ResponseWriter, r *http.Request) {
	var a model.Appointment
	if err := decode(w, r, &a); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.svc.BookAppointment(a)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateAppointment(w http.ResponseWriter, r *http.Request) {
	var patch json.RawMessage
	if err := decode(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := s.svc.UpdateAppointment(chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if a == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) deleteAppointment(w http.ResponseWriter, r *http.Request) {
	s.deleteWith(w, r, s.svc.DeleteAppointment)
}

func (s *Server) listContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.svc.Contacts()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}

func (s *Server) addContact(w http.ResponseWriter, r *http.Request) {
	var c model.EmergencyContact
	if err := decode(w, r, &c); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.svc.AddContact(c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateContact(w http.ResponseWriter, r *http.Request) {
	var patch json.RawMessage
	if err := decode(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.svc.UpdateContact(chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if c == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) deleteContact(w http.ResponseWriter, r *http.Request) {
	s.deleteWith(w, r, s.svc.DeleteContact)
}

func (s *Server) deleteWith(w http.ResponseWriter, r *http.Request, del func(id string) (bool, error)) {
	ok, err := del(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		notFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.svc.MedicationHistory()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) analytics(w http.ResponseWriter, r *http.Request) {
	rep, err := s.svc.Analytics(r.URL.Query().Get("range"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) reportPDF(w http.ResponseWriter, r *http.Request) {
	data, err := report.Collect(s.svc, r.URL.Query().Get("range"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="health-report.pdf"`)
	if err := report.WritePDF(w, data); err != nil {
		s.logger.Error("writing report failed", "error", err)
	}
}

func (s *Server) listReminders(w http.ResponseWriter, r *http.Request) {
	if s.reminders == nil {
		notFound(w)
		return
	}
	rs, err := s.reminders.Today()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Profile()
	writeDocument(s, w, r, p, err)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var patch json.RawMessage
	if err := decode(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.svc.UpdateProfile(patch)
	writeDocument(s, w, r, p, err)
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Settings()
	writeDocument(s, w, r, st, err)
}

func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request) {
	var patch json.RawMessage
	if err := decode(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	st, err := s.svc.UpdateSettings(patch)
	writeDocument(s, w, r, st, err)
}

func (s *Server) getMedicalID(w http.ResponseWriter, r *http.Request) {
	m, err := s.svc.MedicalID()
	writeDocument(s, w, r, m, err)
}

func (s *Server) updateMedicalID(w http.ResponseWriter, r *http.Request) {
	var patch json.RawMessage
	if err := decode(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := s.svc.UpdateMedicalID(patch)
	writeDocument(s, w, r, m, err)
}

func writeDocument[T any](s *Server, w http.ResponseWriter, r *http.Request, doc *T, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if doc == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.svc.Export(w); err != nil {
		s.logger.Error("export failed", "error", err)
	}
}

func (s *Server) importData(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Import(io.LimitReader(r.Body, maxBodyBytes)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// applyAction receives an action replayed by another device. It answers
// 201 when the record was stored and 200 when it already was.
func (s *Server) applyAction(w http.ResponseWriter, r *http.Request) {
	var a model.PendingAction
	if err := decode(w, r, &a); err != nil {
		s.writeError(w, r, err)
		return
	}
	applied, err := s.svc.ApplyAction(a)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if applied {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]bool{"applied": applied})
}
