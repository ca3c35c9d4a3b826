package repositories

import (
	"github.com/skulz/skubackend/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	SchoolRepository     *SchoolRepository
	MembershipRepository *MembershipRepository
	SessionRepository    *SessionRepository
	AddressRepository    *AddressRepository
	GradeRepository      *GradeRepository
	SubjectRepository    *SubjectRepository
	RouteRepository      *RouteRepository
	BusRepository        *BusRepository
	ParentRepository     *ParentRepository
	StudentRepository    *StudentRepository
	AttendanceRepository *AttendanceRepository
	OnboardingRepository *OnboardingRepository
	RecordRepository     *RecordRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	pool := database.Pool
	students := NewStudentRepository(database)
	return &Repositories{
		UserRepository:       NewUserRepository(pool),
		SchoolRepository:     NewSchoolRepository(pool),
		MembershipRepository: NewMembershipRepository(pool),
		SessionRepository:    NewSessionRepository(pool),
		AddressRepository:    NewAddressRepository(pool),
		GradeRepository:      NewGradeRepository(pool),
		SubjectRepository:    NewSubjectRepository(pool),
		RouteRepository:      NewRouteRepository(pool),
		BusRepository:        NewBusRepository(pool),
		ParentRepository:     NewParentRepository(pool),
		StudentRepository:    students,
		AttendanceRepository: NewAttendanceRepository(pool),
		OnboardingRepository: NewOnboardingRepository(database, students),
		RecordRepository:     NewRecordRepository(pool),
	}
}
