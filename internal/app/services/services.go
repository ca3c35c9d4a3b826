package services

// Services defined in this package:
// - AuthService: registration, login with school selection, sessions
// - TenantService: resolves which school a session is bound to
// - OnboardingService: student onboarding submit/approve/reject workflow
// - SchoolService: school and subscription administration
// - StudentService: enrolled student management
// - ParentService, AcademicsService, TransportService: school-scoped CRUD
// - AttendanceService: daily attendance marking and summaries
// - RecordService: document records for students and onboarding requests
