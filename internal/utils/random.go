package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/mozillazg/go-pinyin"
	"github.com/safari-ops/entry-scheduler/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "庆",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	name := ""
	for range rand.Intn(2) + 1 {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

const digits = "0123456789"

// GenerateUsernameFromChineseName 取每个字拼音的前若干个字母，再加上 1 到 3 位数字
func GenerateUsernameFromChineseName(chineseName string) string {
	username := ""
	for _, py := range pinyin.LazyConvert(chineseName, nil) {
		username += py[:rand.Intn(len(py))+1]
	}

	for range rand.Intn(3) + 1 {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

var roles = []domain.Role{
	domain.RoleDispatcher,
	domain.RoleAdmin,
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         roles[rand.Intn(len(roles))],
	}, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	password := make([]rune, length)
	for i := range password {
		password[i] = letters[rand.Intn(len(letters))]
	}
	return string(password)
}

// GenerateRandomVehicleID 生成形如 SV-1234 的车辆编号
func GenerateRandomVehicleID() string {
	return fmt.Sprintf("SV-%04d", rand.Intn(10000))
}

func GenerateRandomPhone() string {
	phone := "1" + string("3589"[rand.Intn(4)])
	for range 9 {
		phone += string(digits[rand.Intn(len(digits))])
	}
	return phone
}

// NewDriver 为司机分配 uuid 以及对应的二维码
func NewDriver(name, email, phone, vehicleID string) (*domain.Driver, error) {
	id := uuid.NewString()
	qrCode := DriverQRCodeContent(id)

	image, err := GenerateQRCodeImage(qrCode)
	if err != nil {
		return nil, err
	}

	return &domain.Driver{
		ID:          id,
		Name:        name,
		Email:       email,
		Phone:       phone,
		VehicleID:   vehicleID,
		QRCode:      qrCode,
		QRCodeImage: image,
	}, nil
}

func GenerateRandomDriver(emailDomainName string) (*domain.Driver, error) {
	name := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(name)
	return NewDriver(name, username+"@"+emailDomainName, GenerateRandomPhone(), GenerateRandomVehicleID())
}

/**
 * GenerateRandomTrip 为司机生成一趟 day 当天的待排班行程
 * 1. 入园时间在 05:30 到 16:30 之间，精确到分钟
 * 2. 行程时长在 1 到 3 小时之间
 * 3. 5 个拥堵采样，取值 [0, 5]
 * 4. 5 个车速采样，取值 [30, 60]
 */
func GenerateRandomTrip(driver *domain.Driver, day time.Time) *domain.Trip {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	entryMinute := 5*60 + 30 + rand.Intn(11*60+1)

	trip := &domain.Trip{
		DriverID:   driver.ID,
		VehicleID:  driver.VehicleID,
		EntryTime:  midnight.Add(time.Duration(entryMinute) * time.Minute),
		TripHours:  1 + rand.Float64()*2,
		Congestion: make([]int, 5),
		Speed:      make([]float64, 5),
		Locations:  []float64{},
		Status:     domain.TripStatusPending,
	}

	for i := range trip.Congestion {
		trip.Congestion[i] = rand.Intn(6)
	}
	for i := range trip.Speed {
		trip.Speed[i] = float64(30 + rand.Intn(31))
	}

	return trip
}
