package timetable

import "fmt"

// AuditGrid performs an independent second pass over the placed slots and
// reports every teacher or room that appears twice at the same day and time
// range. It is intentionally redundant with the assigner's bookkeeping so a
// future change to the assignment algorithm cannot silently introduce double
// bookings.
func AuditGrid(placements []Placement) []ConflictRecord {
	type occupant struct {
		id  string
		day string
		at  string
	}
	seenTeachers := make(map[occupant]bool)
	seenRooms := make(map[occupant]bool)
	var conflicts []ConflictRecord

	for _, p := range placements {
		at := p.Slot.TimeRange()

		teacherID := p.Course.Teacher.ID
		if teacherID != "" {
			key := occupant{id: teacherID, day: p.Slot.Day, at: at}
			if seenTeachers[key] {
				conflicts = append(conflicts, ConflictRecord{
					Type:      ConflictTeacher,
					Message:   fmt.Sprintf("teacher %s double-booked on %s %s", p.Course.Teacher.Name, p.Slot.Day, at),
					Day:       p.Slot.Day,
					TimeRange: at,
					TeacherID: teacherID,
					CourseID:  p.Course.ID,
				})
			}
			seenTeachers[key] = true
		}

		if room := p.Course.Room; room != nil && room.ID != "" {
			key := occupant{id: room.ID, day: p.Slot.Day, at: at}
			if seenRooms[key] {
				conflicts = append(conflicts, ConflictRecord{
					Type:      ConflictRoom,
					Message:   fmt.Sprintf("room %s double-booked on %s %s", room.Number, p.Slot.Day, at),
					Day:       p.Slot.Day,
					TimeRange: at,
					RoomID:    room.ID,
					CourseID:  p.Course.ID,
				})
			}
			seenRooms[key] = true
		}
	}
	return conflicts
}
