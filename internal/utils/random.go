package utils

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/hotelops-dev/sector-scheduler/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonFirstNames = []string{
	"Ana", "Bruno", "Carla", "Diego", "Elena", "Fabio", "Gloria", "Hugo",
	"Ines", "Joao", "Katia", "Lucas", "Marta", "Nuno", "Olivia", "Paulo",
	"Rita", "Sergio", "Tania", "Victor",
}

var commonLastNames = []string{
	"Almeida", "Barros", "Costa", "Duarte", "Esteves", "Ferreira",
	"Gomes", "Lima", "Martins", "Nunes", "Oliveira", "Pereira",
	"Ramos", "Silva", "Teixeira", "Vieira",
}

func GenerateRandomFullName() string {
	first := commonFirstNames[rand.Intn(len(commonFirstNames))]
	last := commonLastNames[rand.Intn(len(commonLastNames))]
	return first + " " + last
}

var roles = []domain.Role{
	domain.RoleEmployee,
	domain.RoleSupervisor,
	domain.RoleAdmin,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var digits = "0123456789"

func GenerateUsernameFromFullName(fullName string) string {
	parts := strings.Fields(strings.ToLower(fullName))
	username := strings.Join(parts, ".")

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomFullName()
	username := GenerateUsernameFromFullName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	randomPassword := make([]rune, length)
	for i := range randomPassword {
		randomPassword[i] = letters[rand.Intn(len(letters))]
	}
	return string(randomPassword)
}

var hotelActivities = []string{
	"reception", "housekeeping", "kitchen", "bar", "events", "maintenance",
}

// GenerateRandomWeekdays draws a random non-empty subset of the ISO
// weekdays via a Fisher-Yates shuffle.
func GenerateRandomWeekdays(max int) []int32 {
	days := []int32{1, 2, 3, 4, 5, 6, 7}

	for i := len(days) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		days[i], days[j] = days[j], days[i]
	}

	n := rand.Intn(max) + 1

	return days[:n]
}

func GenerateRandomActivities() []string {
	shuffled := make([]string, len(hotelActivities))
	copy(shuffled, hotelActivities)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	n := rand.Intn(3) + 1

	return shuffled[:n]
}

func GenerateRandomWorker(sectorID int64, emailDomainName string) *domain.Worker {
	fullName := GenerateRandomFullName()
	username := GenerateUsernameFromFullName(fullName)

	contract := domain.ContractIntermittent
	if rand.Intn(4) == 0 {
		contract = domain.ContractPermanent
	}

	return &domain.Worker{
		SectorID:            sectorID,
		FullName:            fullName,
		Email:               username + "@" + emailDomainName,
		ContractKind:        contract,
		WeeklyHourCap:       float64(rand.Intn(13) + 32), // 32h to 44h
		UnavailableWeekdays: GenerateRandomWeekdays(2),
		UnavailableDates:    nil,
		PreferredDaysOff:    GenerateRandomWeekdays(2),
		Activities:          GenerateRandomActivities(),
		Active:              true,
	}
}
