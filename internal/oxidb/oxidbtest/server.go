// Package oxidbtest runs an in-memory oxidb-server speaking the wire
// protocol, for tests that exercise the real client.
package oxidbtest

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"reflect"
	"sort"
	"strconv"
	"sync"
	"testing"
)

type object struct {
	data        []byte
	contentType string
}

// Server is a fake oxidb-server bound to a loopback port.
type Server struct {
	ln net.Listener

	mu      sync.Mutex
	nextID  float64
	colls   map[string][]map[string]any
	unique  map[string][]string
	buckets map[string]map[string]object
	// Fail makes every command with this name answer with an error.
	Fail map[string]string
}

// Start listens on 127.0.0.1:0 and serves until the test ends.
func Start(t *testing.T) *Server {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &Server{
		ln:      ln,
		colls:   map[string][]map[string]any{},
		unique:  map[string][]string{},
		buckets: map[string]map[string]object{},
		Fail:    map[string]string{},
	}
	go s.serve()
	t.Cleanup(func() { ln.Close() })
	return s
}

// Host returns the listen host.
func (s *Server) Host() string {
	host, _, _ := net.SplitHostPort(s.ln.Addr().String())
	return host
}

// Port returns the listen port.
func (s *Server) Port() int {
	_, port, _ := net.SplitHostPort(s.ln.Addr().String())
	n, _ := strconv.Atoi(port)
	return n
}

// Docs returns a copy of a collection.
func (s *Server) Docs(collection string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.colls[collection]...)
}

// Object returns a stored blob.
func (s *Server) Object(bucket, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.buckets[bucket][key]
	return o.data, ok
}

func (s *Server) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	for {
		lenBuf := make([]byte, 4)
		if _, err := io.ReadFull(conn, lenBuf); err != nil {
			return
		}
		payload := make([]byte, binary.LittleEndian.Uint32(lenBuf))
		if _, err := io.ReadFull(conn, payload); err != nil {
			return
		}
		var req map[string]any
		resp := map[string]any{"ok": true}
		if err := json.Unmarshal(payload, &req); err != nil {
			resp = map[string]any{"ok": false, "error": err.Error()}
		} else if data, err := s.dispatch(req); err != nil {
			resp = map[string]any{"ok": false, "error": err.Error()}
		} else {
			resp["data"] = data
		}
		out, _ := json.Marshal(resp)
		frame := make([]byte, 4+len(out))
		binary.LittleEndian.PutUint32(frame, uint32(len(out)))
		copy(frame[4:], out)
		if _, err := conn.Write(frame); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(req map[string]any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd, _ := req["cmd"].(string)
	if msg, ok := s.Fail[cmd]; ok {
		return nil, fmt.Errorf("%s", msg)
	}
	coll, _ := req["collection"].(string)
	query, _ := req["query"].(map[string]any)
	bucket, _ := req["bucket"].(string)
	key, _ := req["key"].(string)

	switch cmd {
	case "ping":
		return "pong", nil
	case "insert":
		doc, _ := req["doc"].(map[string]any)
		for _, field := range s.unique[coll] {
			for _, d := range s.colls[coll] {
				if v, ok := doc[field]; ok && reflect.DeepEqual(d[field], v) {
					return nil, fmt.Errorf("unique constraint violated on %s", field)
				}
			}
		}
		s.nextID++
		doc["_id"] = s.nextID
		s.colls[coll] = append(s.colls[coll], doc)
		return map[string]any{"id": s.nextID}, nil
	case "find":
		docs := s.match(coll, query)
		if spec, ok := req["sort"].(map[string]any); ok {
			for field, dir := range spec {
				desc := dir.(float64) < 0
				sort.SliceStable(docs, func(i, j int) bool {
					a, b := fmt.Sprint(docs[i][field]), fmt.Sprint(docs[j][field])
					if desc {
						return a > b
					}
					return a < b
				})
			}
		}
		return docs, nil
	case "find_one":
		docs := s.match(coll, query)
		if len(docs) == 0 {
			return nil, nil
		}
		return docs[0], nil
	case "count":
		return map[string]any{"count": len(s.match(coll, query))}, nil
	case "update_one":
		update, _ := req["update"].(map[string]any)
		set, _ := update["$set"].(map[string]any)
		for _, d := range s.colls[coll] {
			if matches(d, query) {
				for k, v := range set {
					d[k] = v
				}
				return map[string]any{"modified": 1}, nil
			}
		}
		return map[string]any{"modified": 0}, nil
	case "delete_one":
		docs := s.colls[coll]
		for i, d := range docs {
			if matches(d, query) {
				s.colls[coll] = append(docs[:i], docs[i+1:]...)
				return map[string]any{"deleted": 1}, nil
			}
		}
		return map[string]any{"deleted": 0}, nil
	case "create_index":
		return "ok", nil
	case "create_unique_index":
		field, _ := req["field"].(string)
		s.unique[coll] = append(s.unique[coll], field)
		return "ok", nil
	case "create_bucket":
		if _, ok := s.buckets[bucket]; !ok {
			s.buckets[bucket] = map[string]object{}
		}
		return "ok", nil
	case "put_object":
		b, ok := s.buckets[bucket]
		if !ok {
			return nil, fmt.Errorf("bucket %s not found", bucket)
		}
		encoded, _ := req["data"].(string)
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, err
		}
		ct, _ := req["content_type"].(string)
		b[key] = object{data: data, contentType: ct}
		return map[string]any{"key": key, "size": len(data)}, nil
	case "get_object":
		o, ok := s.buckets[bucket][key]
		if !ok {
			return nil, fmt.Errorf("object %s not found", key)
		}
		return map[string]any{
			"content":  base64.StdEncoding.EncodeToString(o.data),
			"metadata": map[string]any{"content_type": o.contentType},
		}, nil
	case "delete_object":
		if _, ok := s.buckets[bucket][key]; !ok {
			return nil, fmt.Errorf("object %s not found", key)
		}
		delete(s.buckets[bucket], key)
		return "ok", nil
	}
	return nil, fmt.Errorf("unknown command %q", cmd)
}

func (s *Server) match(coll string, query map[string]any) []map[string]any {
	var out []map[string]any
	for _, d := range s.colls[coll] {
		if matches(d, query) {
			out = append(out, d)
		}
	}
	return out
}

func matches(doc, query map[string]any) bool {
	for k, v := range query {
		if !reflect.DeepEqual(doc[k], v) {
			return false
		}
	}
	return true
}
