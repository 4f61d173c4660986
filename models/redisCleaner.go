package models

import (
	"github.com/mhmd-ipx/Lead-sub001/config"
	"github.com/mhmd-ipx/Lead-sub001/utils"
)

type RedisCleaner interface {
	RemoveInstanceRedis() error // remove one
	RemoveAllRedis() error      // remove list & map if exists
}

// remove both item & list + map
func RemoveRedisBoth[T RedisCleaner](obj T) error {
	if err := obj.RemoveInstanceRedis(); err != nil {
		return err
	}
	if err := obj.RemoveAllRedis(); err != nil {
		return err
	}
	return nil
}

/* admin resources */
func (obj Company) RemoveInstanceRedis() error {
	return obj.RemoveRedis()
}

func (obj Company) RemoveAllRedis() error {
	return utils.ClearRedisAdmin[AllCompany]()
}

/* generated */
func (obj User) RemoveInstanceRedis() error {
	return config.RemoveRedisKey("User:" + obj.Username)
}

func (obj User) RemoveAllRedis() error {
	if err := utils.RemoveRedisList[AllUser](obj.CompanyId); err != nil {
		return err
	}
	return nil
}

func (obj Bill) RemoveInstanceRedis() error {
	if err := utils.RemoveRedisItem[Bill](obj.ID); err != nil {
		return err
	}
	return nil
}

func (obj Bill) RemoveAllRedis() error {
	if err := utils.RemoveRedisList[AllBill](obj.CompanyId); err != nil {
		return err
	}
	if err := utils.RemoveRedisMap[AllBill](obj.CompanyId); err != nil {
		return err
	}
	return nil
}

func (obj FinancialDocument) RemoveInstanceRedis() error {
	if err := utils.RemoveRedisItem[FinancialDocument](obj.ID); err != nil {
		return err
	}
	return nil
}

func (obj FinancialDocument) RemoveAllRedis() error {
	if err := utils.RemoveRedisList[AllFinancialDocument](obj.CompanyId); err != nil {
		return err
	}
	if err := utils.RemoveRedisMap[AllFinancialDocument](obj.CompanyId); err != nil {
		return err
	}
	return nil
}

func (obj ExamItem) RemoveInstanceRedis() error {
	if err := utils.RemoveRedisItem[ExamItem](obj.ID); err != nil {
		return err
	}
	return nil
}

func (obj ExamItem) RemoveAllRedis() error {
	if err := utils.RemoveRedisList[AllExamItem](obj.CompanyId); err != nil {
		return err
	}
	return nil
}

func (obj Ticket) RemoveInstanceRedis() error {
	if err := utils.RemoveRedisItem[Ticket](obj.ID); err != nil {
		return err
	}
	return nil
}

func (obj Ticket) RemoveAllRedis() error {
	if err := utils.RemoveRedisList[AllTicket](obj.CompanyId); err != nil {
		return err
	}
	return nil
}
