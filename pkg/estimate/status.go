// Copyright (C) 2017 ScyllaDB

package estimate

import (
	"bufio"
	"bytes"
	"net"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// NodeStatus represents nodetool Status=Up/Down.
type NodeStatus byte

// NodeStatus enumeration.
const (
	NodeStatusUp   NodeStatus = 'U'
	NodeStatusDown NodeStatus = 'D'
)

// NodeState represents nodetool State=Normal/Leaving/Joining/Moving.
type NodeState byte

// NodeState enumeration.
const (
	NodeStateNormal  NodeState = 'N'
	NodeStateLeaving NodeState = 'L'
	NodeStateJoining NodeState = 'J'
	NodeStateMoving  NodeState = 'M'
)

// NodeStatusInfo represents a nodetool status line.
type NodeStatusInfo struct {
	Datacenter string
	Addr       string
	Status     NodeStatus
	State      NodeState
	// Owns is the effective ownership in percent or -1 if nodetool
	// could not compute it.
	Owns float64
}

// OwnsKnown returns true if ownership is reported for the node.
func (s NodeStatusInfo) OwnsKnown() bool {
	return s.Owns >= 0
}

// Normal returns true if the node is up and in normal state.
func (s NodeStatusInfo) Normal() bool {
	return s.Status == NodeStatusUp && s.State == NodeStateNormal
}

// Code returns the two letter status code as shown by nodetool, i.e. UN.
func (s NodeStatusInfo) Code() string {
	return string([]byte{byte(s.Status), byte(s.State)})
}

// NodeStatusInfoSlice adds functionality to status output.
type NodeStatusInfoSlice []NodeStatusInfo

// Host returns the first node whose address is accepted by match.
func (s NodeStatusInfoSlice) Host(match func(addr string) bool) (NodeStatusInfo, bool) {
	for _, n := range s {
		if match(n.Addr) {
			return n, true
		}
	}
	return NodeStatusInfo{}, false
}

const datacenterPrefix = "Datacenter:"

// parseStatus parses output of nodetool status. Lines that do not describe
// a node are ignored.
func parseStatus(out []byte) (NodeStatusInfoSlice, error) {
	var (
		nodes NodeStatusInfoSlice
		dc    string
	)

	s := bufio.NewScanner(bytes.NewReader(out))
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if strings.HasPrefix(line, datacenterPrefix) {
			dc = strings.TrimSpace(strings.TrimPrefix(line, datacenterPrefix))
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 || !isStatusCode(fields[0]) {
			continue
		}
		nodes = append(nodes, NodeStatusInfo{
			Datacenter: dc,
			Addr:       normalizeAddr(fields[1]),
			Status:     NodeStatus(fields[0][0]),
			State:      NodeState(fields[0][1]),
			Owns:       parseOwns(fields[2:]),
		})
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, errors.New("no nodes in status output")
	}

	return nodes, nil
}

func isStatusCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	return strings.IndexByte("UD", s[0]) >= 0 && strings.IndexByte("NLJM", s[1]) >= 0
}

// parseOwns finds the percentage column, load may span two fields and
// both load and ownership may be reported as "?".
func parseOwns(fields []string) float64 {
	for _, f := range fields {
		if !strings.HasSuffix(f, "%") {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSuffix(f, "%"), 64)
		if err != nil {
			return -1
		}
		return v
	}
	return -1
}

func normalizeAddr(addr string) string {
	if ip := net.ParseIP(addr); ip != nil {
		return ip.String()
	}
	return addr
}

var keyEstimateLabels = []string{
	"Number of partitions (estimate)",
	"Number of keys (estimate)",
}

// parseKeyEstimate parses output of nodetool tablestats or cfstats for
// a single table.
func parseKeyEstimate(out []byte) (float64, error) {
	s := bufio.NewScanner(bytes.NewReader(out))
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		for _, l := range keyEstimateLabels {
			if !strings.HasPrefix(line, l) {
				continue
			}
			i := strings.IndexByte(line, ':')
			if i < 0 {
				return 0, errors.Errorf("malformed line %q", line)
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(line[i+1:]), 64)
			if err != nil {
				return 0, errors.Wrapf(err, "parse %q", line)
			}
			return v, nil
		}
	}
	if err := s.Err(); err != nil {
		return 0, err
	}
	return 0, errors.New("no key estimate in output")
}
