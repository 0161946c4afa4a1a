package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/xelth-com/eckodoo/internal/services/odoo"
	"github.com/xelth-com/eckodoo/internal/utils"
)

// searchRequest is the body of the search, search_read and count routes.
type searchRequest struct {
	domain odoo.Criteria
	fields []string
	opts   []odoo.SearchOption
}

// decodeObject reads a JSON object body.
func decodeObject(req *http.Request) (map[string]interface{}, error) {
	var body interface{}
	if err := utils.DecodeJSON(req.Body, &body); err != nil {
		return nil, err
	}
	obj, ok := body.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a JSON object, got %T", body)
	}
	return obj, nil
}

func decodeSearch(req *http.Request) (searchRequest, error) {
	var sr searchRequest

	body, err := decodeObject(req)
	if err != nil {
		return sr, err
	}

	if sr.domain, err = parseDomain(body["domain"]); err != nil {
		return sr, err
	}

	for _, key := range []string{"limit", "offset"} {
		v, ok := body[key]
		if !ok || v == nil {
			continue
		}
		n, ok := v.(int64)
		if !ok {
			return sr, fmt.Errorf("%s must be an integer", key)
		}
		if key == "limit" {
			sr.opts = append(sr.opts, odoo.Limit(int(n)))
		} else {
			sr.opts = append(sr.opts, odoo.Offset(int(n)))
		}
	}

	if v, ok := body["order"]; ok && v != nil {
		order, ok := v.(string)
		if !ok {
			return sr, fmt.Errorf("order must be a string")
		}
		sr.opts = append(sr.opts, odoo.Order(order))
	}

	if v, ok := body["fields"]; ok && v != nil {
		list, ok := v.([]interface{})
		if !ok {
			return sr, fmt.Errorf("fields must be an array of strings")
		}
		for _, f := range list {
			name, ok := f.(string)
			if !ok {
				return sr, fmt.Errorf("fields must be an array of strings")
			}
			sr.fields = append(sr.fields, name)
		}
	}

	return sr, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func pathID(req *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(req)["id"], 10, 64)
}

// createRecord creates a record and returns its id
func (r *Router) createRecord(w http.ResponseWriter, req *http.Request) {
	values, err := decodeObject(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if !r.ensureSession(w, req) {
		return
	}

	id, err := r.client.Create(mux.Vars(req)["model"], values)
	if err != nil {
		respondOdooError(w, req, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// readRecords returns the records named by ?ids=, limited to ?fields=
func (r *Router) readRecords(w http.ResponseWriter, req *http.Request) {
	var ids []int64
	for _, raw := range splitList(req.URL.Query().Get("ids")) {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid record ID")
			return
		}
		ids = append(ids, id)
	}
	if !r.ensureSession(w, req) {
		return
	}

	records, err := r.client.Read(mux.Vars(req)["model"], ids, splitList(req.URL.Query().Get("fields"))...)
	if err != nil {
		respondOdooError(w, req, err)
		return
	}

	respondJSON(w, http.StatusOK, records)
}

// updateRecord writes the body's values to one record
func (r *Router) updateRecord(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid record ID")
		return
	}
	values, err := decodeObject(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if !r.ensureSession(w, req) {
		return
	}

	ok, err := r.client.Update(mux.Vars(req)["model"], id, values)
	if err != nil {
		respondOdooError(w, req, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"updated": ok})
}

// deleteRecord unlinks one record
func (r *Router) deleteRecord(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid record ID")
		return
	}
	if !r.ensureSession(w, req) {
		return
	}

	ok, err := r.client.Delete(mux.Vars(req)["model"], id)
	if err != nil {
		respondOdooError(w, req, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"deleted": ok})
}

func (r *Router) searchRecords(w http.ResponseWriter, req *http.Request) {
	sr, err := decodeSearch(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !r.ensureSession(w, req) {
		return
	}

	ids, err := r.client.Search(mux.Vars(req)["model"], sr.domain, sr.opts...)
	if err != nil {
		respondOdooError(w, req, err)
		return
	}

	respondJSON(w, http.StatusOK, ids)
}

func (r *Router) searchReadRecords(w http.ResponseWriter, req *http.Request) {
	sr, err := decodeSearch(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !r.ensureSession(w, req) {
		return
	}

	records, err := r.client.SearchRead(mux.Vars(req)["model"], sr.domain, sr.fields, sr.opts...)
	if err != nil {
		respondOdooError(w, req, err)
		return
	}

	respondJSON(w, http.StatusOK, records)
}

func (r *Router) countRecords(w http.ResponseWriter, req *http.Request) {
	sr, err := decodeSearch(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !r.ensureSession(w, req) {
		return
	}

	n, err := r.client.SearchCount(mux.Vars(req)["model"], sr.domain)
	if err != nil {
		respondOdooError(w, req, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"count": n})
}

// fieldsGet describes the model's fields, limited to ?attributes=
func (r *Router) fieldsGet(w http.ResponseWriter, req *http.Request) {
	if !r.ensureSession(w, req) {
		return
	}

	fields, err := r.client.FieldsGet(mux.Vars(req)["model"], splitList(req.URL.Query().Get("attributes"))...)
	if err != nil {
		respondOdooError(w, req, err)
		return
	}

	respondJSON(w, http.StatusOK, fields)
}
