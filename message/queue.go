// This file is part of c64core.
//
// c64core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// c64core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with c64core.  If not, see <https://www.gnu.org/licenses/>.

package message

// Queue is the worker-to-host channel: the worker
// thread posts with Put, the host drains with Poll, and neither side
// blocks the other — a full queue drops the oldest unread message
// rather than stall the cycle loop that's trying to post one.
type Queue struct {
	ch chan Message
}

// NewQueue returns a Queue holding up to capacity unread messages.
func NewQueue(capacity int) *Queue {
	return &Queue{ch: make(chan Message, capacity)}
}

// Put posts a message, discarding the oldest queued one first if the
// queue is full so the worker thread never blocks on a slow host.
func (q *Queue) Put(tag Tag, payload interface{}) {
	msg := Message{Tag: tag, Payload: payload}
	for {
		select {
		case q.ch <- msg:
			return
		default:
			select {
			case <-q.ch:
			default:
			}
		}
	}
}

// Poll returns the next queued message and true, or a zero Message and
// false if the queue is currently empty.
func (q *Queue) Poll() (Message, bool) {
	select {
	case msg := <-q.ch:
		return msg, true
	default:
		return Message{}, false
	}
}
